package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"yurt/internal/model"
	"yurt/internal/mw"
	"yurt/internal/service"
	"yurt/internal/storage"
)

type orderLineRequest struct {
	MenuItemID          string   `json:"menuItemId"`
	Quantity            int      `json:"quantity"`
	Size                string   `json:"size"`
	ToppingIDs          []string `json:"toppingIds"`
	SpecialInstructions string   `json:"specialInstructions"`
}

type createOrderRequest struct {
	LocationID    string             `json:"locationId"`
	Items         []orderLineRequest `json:"items"`
	TotalPrice    float64            `json:"totalPrice"`
	PaymentMethod string             `json:"paymentMethod"`
	Notes         string             `json:"notes"`
}

func CreateOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(mw.UserCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if req.LocationID == "" || len(req.Items) == 0 {
			writeError(w, http.StatusBadRequest, "location and items are required")
			return
		}
		if req.TotalPrice <= 0 {
			writeError(w, http.StatusBadRequest, "totalPrice must be positive")
			return
		}
		if req.PaymentMethod != "" && !model.ValidPaymentMethod(req.PaymentMethod) {
			writeError(w, http.StatusBadRequest, "unknown payment method")
			return
		}
		for _, line := range req.Items {
			if line.MenuItemID == "" || line.Quantity <= 0 {
				writeError(w, http.StatusBadRequest, "each item needs a menu item and a positive quantity")
				return
			}
			if line.Size != "" && !model.ValidSize(line.Size) {
				writeError(w, http.StatusBadRequest, "unknown size")
				return
			}
		}

		in := service.CreateOrderInput{
			LocationID:    req.LocationID,
			TotalPrice:    req.TotalPrice,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		}
		for _, line := range req.Items {
			in.Items = append(in.Items, service.CreateOrderLine{
				MenuItemID:          line.MenuItemID,
				Quantity:            line.Quantity,
				Size:                line.Size,
				ToppingIDs:          line.ToppingIDs,
				SpecialInstructions: line.SpecialInstructions,
			})
		}

		order, err := orderSvc.Create(r.Context(), userID, in)
		if err != nil {
			var closed *service.ClosedLocationError
			switch {
			case errors.As(err, &closed):
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":            closed.Reason,
					"isLocationClosed": true,
				})
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "location not found")
			default:
				slog.Error("order create failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Order placed successfully",
			"order": map[string]any{
				"id":          order.ID,
				"orderNumber": order.OrderNumber,
				"status":      order.Status,
			},
		})
	}
}

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)

		orders, err := orderSvc.ListByCustomer(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, http.StatusOK, orders)
	}
}

func GetOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)
		role, _ := r.Context().Value(mw.RoleCtxKey).(string)

		order, err := orderSvc.Get(r.Context(), chi.URLParam(r, "id"), userID, role)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrForbidden):
				writeError(w, http.StatusForbidden, "forbidden")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}
