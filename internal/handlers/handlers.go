package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/auth"
	"github.com/creatorlink/platform/internal/dashboard"
	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
	"github.com/creatorlink/platform/internal/metrics"
	"github.com/creatorlink/platform/internal/realtime"
)

// DashboardBuilder assembles the cross-checked dashboard response.
type DashboardBuilder interface {
	Build(ctx context.Context, profile *database.CreatorProfile, opts daterange.Options) (*dashboard.Dashboard, error)
}

// The store interfaces name the repository slices each handler group
// needs; the gorm repositories in internal/database satisfy them.

// UserStore persists platform accounts.
type UserStore interface {
	Create(ctx context.Context, user *database.User) error
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// CreatorStore persists creator profiles.
type CreatorStore interface {
	Create(ctx context.Context, profile *database.CreatorProfile) error
	GetByID(ctx context.Context, id uint) (*database.CreatorProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*database.CreatorProfile, error)
	GetBySubID(ctx context.Context, subID string) (*database.CreatorProfile, error)
	List(ctx context.Context, status string, limit, offset int) ([]database.CreatorProfile, error)
	Update(ctx context.Context, profile *database.CreatorProfile) error
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// PayoutStore persists payout requests.
type PayoutStore interface {
	Create(ctx context.Context, payout *database.Payout) error
	GetByID(ctx context.Context, id uint) (*database.Payout, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]database.Payout, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]database.Payout, error)
	Review(ctx context.Context, id uint, status string, reviewerID uint, at time.Time) error
}

// ReviewStore persists admin decisions.
type ReviewStore interface {
	Create(ctx context.Context, review *database.AdminReview) error
}

// EarningsStore persists tracked clicks and conversions.
type EarningsStore interface {
	RecordEarning(ctx context.Context, record *database.EarningRecord) error
	RecordClick(ctx context.Context, event *database.ClickEvent) error
}

// Handler owns the HTTP surface of the platform.
type Handler struct {
	users     UserStore
	creators  CreatorStore
	payouts   PayoutStore
	reviews   ReviewStore
	earnings  EarningsStore
	auth      *auth.Manager
	dashboard DashboardBuilder
	hub       *realtime.Hub
	logger    *zap.Logger
}

// NewHandler wires the HTTP handler.
func NewHandler(
	users UserStore,
	creators CreatorStore,
	payouts PayoutStore,
	reviews ReviewStore,
	earnings EarningsStore,
	authManager *auth.Manager,
	builder DashboardBuilder,
	hub *realtime.Hub,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:     users,
		creators:  creators,
		payouts:   payouts,
		reviews:   reviews,
		earnings:  earnings,
		auth:      authManager,
		dashboard: builder,
		hub:       hub,
		logger:    logger,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(router *gin.Engine, collector *metrics.Collector) {
	if collector != nil {
		router.Use(collector.GinMiddleware())
	}

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", metrics.Handler())

	// Partner postbacks and click tracking are authenticated out of band
	// (signed link parameters), not with user tokens.
	track := router.Group("/track")
	{
		track.GET("/click", h.TrackClick)
		track.POST("/conversion", h.TrackConversion)
	}

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
		}

		creator := api.Group("/creator", auth.RequireAuth(h.auth))
		{
			creator.POST("/profile", h.CreateProfile)
			creator.GET("/profile", h.GetProfile)
			creator.PUT("/profile", h.UpdateProfile)
			creator.GET("/dashboard", h.GetDashboard)
			creator.POST("/payouts", h.RequestPayout)
			creator.GET("/payouts", h.ListPayouts)
			creator.GET("/ws", h.HandleWebSocket)
		}

		admin := api.Group("/admin", auth.RequireAuth(h.auth), auth.RequireRole(database.RoleAdmin))
		{
			admin.GET("/creators", h.ListCreators)
			admin.POST("/creators/:id/review", h.ReviewCreator)
			admin.GET("/payouts", h.ListPayoutQueue)
			admin.POST("/payouts/:id/review", h.ReviewPayout)
		}
	}
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleWebSocket upgrades the connection for realtime dashboard events.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "realtime updates are disabled"})
		return
	}
	h.hub.HandleWebSocket(c)
}
