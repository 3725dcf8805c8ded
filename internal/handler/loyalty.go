package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"yurt/internal/model"
	"yurt/internal/mw"
	"yurt/internal/service"
	"yurt/internal/storage"
)

func loyaltyPayload(account *model.LoyaltyAccount) map[string]any {
	return map[string]any{
		"totalPoints":     account.TotalPoints,
		"availablePoints": account.AvailablePoints,
		"tier":            account.Tier,
		"totalSpent":      account.TotalSpent,
		"orderCount":      account.OrderCount,
		"lastOrderDate":   account.LastOrderDate,
		"birthday":        account.Birthday,
		"tierBenefits":    account.TierBenefits(),
	}
}

func LoyaltyStatusHandler(loyaltySvc *service.LoyaltyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)

		account, err := loyaltySvc.Status(r.Context(), userID)
		if err != nil {
			slog.Error("loyalty status failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    loyaltyPayload(account),
		})
	}
}

type awardRequest struct {
	OrderID     string  `json:"orderId"`
	OrderAmount float64 `json:"orderAmount"`
}

func LoyaltyAwardHandler(loyaltySvc *service.LoyaltyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)

		var req awardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.OrderAmount <= 0 {
			writeError(w, http.StatusBadRequest, "orderAmount must be positive")
			return
		}

		earned, account, err := loyaltySvc.AwardForOrder(r.Context(), userID, req.OrderID, req.OrderAmount)
		if err != nil {
			slog.Error("loyalty award failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"pointsEarned": earned,
			"data":         loyaltyPayload(account),
		})
	}
}

type redeemRequest struct {
	OrderID string `json:"orderId"`
	Points  int    `json:"points"`
}

func LoyaltyRedeemHandler(loyaltySvc *service.LoyaltyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)

		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Points <= 0 {
			writeError(w, http.StatusBadRequest, "points must be positive")
			return
		}

		discount, account, err := loyaltySvc.Redeem(r.Context(), userID, req.OrderID, req.Points)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrInsufficientPoints):
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":           "Insufficient points",
					"availablePoints": account.AvailablePoints,
				})
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "loyalty account not found")
			default:
				slog.Error("loyalty redeem failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"discount":        discount,
			"pointsRedeemed":  req.Points,
			"remainingPoints": account.AvailablePoints,
		})
	}
}

func LoyaltyBirthdayBonusHandler(loyaltySvc *service.LoyaltyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(mw.UserCtxKey).(string)

		granted, account, err := loyaltySvc.BirthdayBonus(r.Context(), userID)
		if err != nil {
			slog.Error("birthday bonus failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"pointsGranted": granted,
			"data":          loyaltyPayload(account),
		})
	}
}
