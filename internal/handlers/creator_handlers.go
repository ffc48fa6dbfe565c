package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/auth"
	"github.com/creatorlink/platform/internal/database"
)

type profileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Website     string `json:"website"`
	Bio         string `json:"bio"`
}

// CreateProfile submits a creator application. The attribution identifier
// is assigned here and never changes afterwards; every tracked click,
// partner postback and report ties back to it.
func (h *Handler) CreateProfile(c *gin.Context) {
	userID := auth.UserID(c)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, err := h.creators.GetByUserID(c.Request.Context(), userID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "profile already exists"})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
		return
	}

	profile := &database.CreatorProfile{
		UserID:      userID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Website:     req.Website,
		Bio:         req.Bio,
		SubID:       "creator-" + uuid.NewString()[:8],
		Status:      database.ProfilePending,
	}
	if err := h.creators.Create(c.Request.Context(), profile); err != nil {
		h.logger.Error("failed to create creator profile", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// GetProfile returns the caller's creator profile.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile updates mutable profile fields. Status and the attribution
// identifier are controlled by admin review and stay untouched.
func (h *Handler) UpdateProfile(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile.DisplayName = strings.TrimSpace(req.DisplayName)
	profile.Website = req.Website
	profile.Bio = req.Bio
	if err := h.creators.Update(c.Request.Context(), profile); err != nil {
		h.logger.Error("failed to update creator profile", zap.Uint("profile_id", profile.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// loadProfile resolves the caller's creator profile or writes the error
// response and reports false.
func (h *Handler) loadProfile(c *gin.Context) (*database.CreatorProfile, bool) {
	profile, err := h.creators.GetByUserID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "creator profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		}
		return nil, false
	}
	return profile, true
}
