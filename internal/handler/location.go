package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"yurt/internal/service"
	"yurt/internal/storage"
)

// LocationAvailabilityHandler is public: the storefront polls it before
// letting a customer start an order.
func LocationAvailabilityHandler(locationSvc *service.LocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := locationSvc.Availability(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "location not found")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
