package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/database"
)

type conversionRequest struct {
	SubID      string  `json:"subId1" binding:"required"`
	OrderID    string  `json:"orderId" binding:"required"`
	SaleAmount float64 `json:"saleAmount" binding:"required,gt=0"`
	Commission float64 `json:"commission" binding:"required,gte=0"`
	Network    string  `json:"network"`
	OccurredAt string  `json:"occurredAt"` // RFC 3339, defaults to now
}

// TrackClick records one affiliate link click and redirects to the target.
// The subId1 parameter carries the creator's attribution identifier the
// same way the partner network reports it back.
func (h *Handler) TrackClick(c *gin.Context) {
	subID := c.Query("subId1")
	target := c.Query("redirect")
	if subID == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subId1 and redirect are required"})
		return
	}

	profile, err := h.creators.GetBySubID(c.Request.Context(), subID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown attribution id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record click"})
		return
	}

	event := &database.ClickEvent{
		CreatorID:  profile.ID,
		SubID:      subID,
		LinkID:     c.Query("linkId"),
		Referrer:   c.Request.Referer(),
		OccurredAt: time.Now().UTC(),
	}
	if err := h.earnings.RecordClick(c.Request.Context(), event); err != nil {
		// Losing one click must not break the visitor's navigation.
		h.logger.Warn("failed to record click", zap.String("sub_id", subID), zap.Error(err))
	}

	c.Redirect(http.StatusFound, target)
}

// TrackConversion ingests a partner conversion postback into the local
// earnings store, the fallback source for dashboards and the baseline the
// consistency checks compare partner reports against.
func (h *Handler) TrackConversion(c *gin.Context) {
	var req conversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.creators.GetBySubID(c.Request.Context(), req.SubID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown attribution id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record conversion"})
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occurredAt timestamp"})
			return
		}
		occurredAt = parsed.UTC()
	}

	record := &database.EarningRecord{
		CreatorID:  profile.ID,
		SubID:      req.SubID,
		OrderID:    req.OrderID,
		SaleAmount: req.SaleAmount,
		Commission: req.Commission,
		Network:    req.Network,
		OccurredAt: occurredAt,
	}
	if err := h.earnings.RecordEarning(c.Request.Context(), record); err != nil {
		h.logger.Error("failed to record conversion",
			zap.String("sub_id", req.SubID),
			zap.String("order_id", req.OrderID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record conversion"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"earning": record})
}
