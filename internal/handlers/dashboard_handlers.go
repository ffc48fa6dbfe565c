package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
)

// GetDashboard assembles the creator's cross-checked dashboard. The window
// comes from either ?days=N or ?startDate=...&endDate=... in YYYY-MM-DD;
// malformed inputs degrade to the default window rather than failing.
func (h *Handler) GetDashboard(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}
	if profile.Status != database.ProfileApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "creator profile is not approved"})
		return
	}

	opts := rangeOptions(c)
	dash, err := h.dashboard.Build(c.Request.Context(), profile, opts)
	if err != nil {
		h.logger.Error("failed to build dashboard",
			zap.Uint("profile_id", profile.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, dash)
}

func rangeOptions(c *gin.Context) daterange.Options {
	opts := daterange.Options{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	if raw := c.Query("days"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil {
			opts.Days = days
		}
	}
	return opts
}
