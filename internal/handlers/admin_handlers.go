package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/auth"
	"github.com/creatorlink/platform/internal/database"
)

type reviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Notes    string `json:"notes"`
}

// ListCreators returns creator profiles, optionally filtered by status.
func (h *Handler) ListCreators(c *gin.Context) {
	limit, offset := pagination(c)
	profiles, err := h.creators.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list creators"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"creators": profiles})
}

// ReviewCreator records an admin decision on a pending creator profile.
func (h *Handler) ReviewCreator(c *gin.Context) {
	profileID, ok := idParam(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.creators.GetByID(c.Request.Context(), profileID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "creator profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load creator profile"})
		return
	}
	if profile.Status != database.ProfilePending {
		c.JSON(http.StatusConflict, gin.H{"error": "creator profile has already been reviewed"})
		return
	}

	status := database.ProfileApproved
	if req.Decision == database.DecisionRejected {
		status = database.ProfileRejected
	}
	if err := h.creators.UpdateStatus(c.Request.Context(), profileID, status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "creator profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to review creator"})
		return
	}

	h.recordReview(c, database.ReviewSubjectProfile, profileID, req)
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// ListPayoutQueue returns payouts awaiting review, oldest first.
func (h *Handler) ListPayoutQueue(c *gin.Context) {
	status := c.DefaultQuery("status", database.PayoutRequested)
	limit, _ := pagination(c)
	payouts, err := h.payouts.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// ReviewPayout records an admin decision on a payout request and notifies
// the creator's realtime subscribers.
func (h *Handler) ReviewPayout(c *gin.Context) {
	payoutID, ok := idParam(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payout, err := h.payouts.GetByID(c.Request.Context(), payoutID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payout"})
		return
	}
	if payout.Status != database.PayoutRequested {
		c.JSON(http.StatusConflict, gin.H{"error": "payout has already been reviewed"})
		return
	}

	status := database.PayoutApproved
	if req.Decision == database.DecisionRejected {
		status = database.PayoutRejected
	}
	reviewerID := auth.UserID(c)
	if err := h.payouts.Review(c.Request.Context(), payoutID, status, reviewerID, time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to review payout"})
		return
	}
	payout.Status = status

	h.recordReview(c, database.ReviewSubjectPayout, payoutID, req)
	if h.hub != nil {
		if err := h.hub.BroadcastPayoutStatus(payout.CreatorID, payout); err != nil {
			h.logger.Warn("failed to broadcast payout status",
				zap.Uint("payout_id", payoutID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

// recordReview persists the audit row for an admin decision. A failed
// write is logged but never rolls back the decision itself.
func (h *Handler) recordReview(c *gin.Context, subjectType string, subjectID uint, req reviewRequest) {
	review := &database.AdminReview{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		ReviewerID:  auth.UserID(c),
		Decision:    req.Decision,
		Notes:       req.Notes,
	}
	if err := h.reviews.Create(c.Request.Context(), review); err != nil {
		h.logger.Error("failed to record admin review",
			zap.String("subject_type", subjectType),
			zap.Uint("subject_id", subjectID),
			zap.Error(err))
	}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
