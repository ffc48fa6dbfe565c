package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
)

type payoutRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Currency    string  `json:"currency"`
	PeriodStart string  `json:"period_start" binding:"required"`
	PeriodEnd   string  `json:"period_end" binding:"required"`
	Notes       string  `json:"notes"`
}

// RequestPayout submits a payout request for a settled earning period.
func (h *Handler) RequestPayout(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}
	if profile.Status != database.ProfileApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "creator profile is not approved"})
		return
	}

	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, err := daterange.TryParseCustomRange(daterange.Options{
		StartDate: req.PeriodStart,
		EndDate:   req.PeriodEnd,
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout period"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	payout := &database.Payout{
		CreatorID:   profile.ID,
		Reference:   "po-" + uuid.NewString(),
		Amount:      req.Amount,
		Currency:    currency,
		Status:      database.PayoutRequested,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Notes:       req.Notes,
	}
	if err := h.payouts.Create(c.Request.Context(), payout); err != nil {
		h.logger.Error("failed to create payout request",
			zap.Uint("profile_id", profile.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payout request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payout": payout})
}

// ListPayouts returns the caller's payout history, newest first.
func (h *Handler) ListPayouts(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	payouts, err := h.payouts.ListByCreator(c.Request.Context(), profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}
