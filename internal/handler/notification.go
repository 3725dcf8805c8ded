package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"yurt/internal/mw"
	"yurt/internal/service"
	"yurt/internal/storage"
)

func ListNotificationsHandler(notifySvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)
		unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

		notifications, err := notifySvc.List(r.Context(), userID, unreadOnly)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if len(notifications) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, http.StatusOK, notifications)
	}
}

func MarkNotificationReadHandler(notifySvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)

		n, err := notifySvc.MarkRead(r.Context(), chi.URLParam(r, "id"), userID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "notification not found")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, n)
	}
}
