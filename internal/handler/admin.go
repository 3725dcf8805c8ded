package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"yurt/internal/model"
	"yurt/internal/service"
	"yurt/internal/storage"
)

func AdminListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" {
			switch model.OrderStatus(status) {
			case model.StatusPending, model.StatusAccepted, model.StatusRejected,
				model.StatusCompleted, model.StatusCancelled:
			default:
				writeError(w, http.StatusBadRequest, "unknown status filter")
				return
			}
		}

		orders, err := orderSvc.ListAll(r.Context(), status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

func AdminUpdateOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update model.StatusUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		order, err := orderSvc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), update)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, model.ErrInvalidStatusTransition):
				writeError(w, http.StatusConflict, err.Error())
			case errors.Is(err, model.ErrPrepTimeRequired),
				errors.Is(err, model.ErrRejectionReasonRequired):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				slog.Error("order update failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	}
}
