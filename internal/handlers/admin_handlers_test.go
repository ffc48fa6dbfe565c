package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/auth"
	"github.com/creatorlink/platform/internal/database"
)

type stubCreatorStore struct {
	CreatorStore
	profiles      map[uint]*database.CreatorProfile
	statusUpdates map[uint]string
}

func (s *stubCreatorStore) GetByID(_ context.Context, id uint) (*database.CreatorProfile, error) {
	profile, ok := s.profiles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *stubCreatorStore) UpdateStatus(_ context.Context, id uint, status string) error {
	if _, ok := s.profiles[id]; !ok {
		return database.ErrNotFound
	}
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[uint]string)
	}
	s.statusUpdates[id] = status
	return nil
}

type stubPayoutStore struct {
	PayoutStore
	payouts  map[uint]*database.Payout
	reviewed map[uint]string
}

func (s *stubPayoutStore) GetByID(_ context.Context, id uint) (*database.Payout, error) {
	payout, ok := s.payouts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *payout
	return &copied, nil
}

func (s *stubPayoutStore) Review(_ context.Context, id uint, status string, _ uint, _ time.Time) error {
	if s.reviewed == nil {
		s.reviewed = make(map[uint]string)
	}
	s.reviewed[id] = status
	return nil
}

type stubReviewStore struct {
	reviews []database.AdminReview
}

func (s *stubReviewStore) Create(_ context.Context, review *database.AdminReview) error {
	s.reviews = append(s.reviews, *review)
	return nil
}

func adminRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserID, uint(99))
		c.Set(auth.ContextRole, database.RoleAdmin)
	})
	router.POST("/creators/:id/review", h.ReviewCreator)
	router.POST("/payouts/:id/review", h.ReviewPayout)
	return router
}

func postJSON(router *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestReviewCreator(t *testing.T) {
	newHandler := func(status string) (*Handler, *stubCreatorStore, *stubReviewStore) {
		creators := &stubCreatorStore{profiles: map[uint]*database.CreatorProfile{
			5: {ID: 5, SubID: "creator-5", Status: status},
		}}
		reviews := &stubReviewStore{}
		h := &Handler{creators: creators, reviews: reviews, logger: zap.NewNop()}
		return h, creators, reviews
	}

	t.Run("pending profile is approved", func(t *testing.T) {
		h, creators, reviews := newHandler(database.ProfilePending)
		recorder := postJSON(adminRouter(h), "/creators/5/review", `{"decision":"approved"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, database.ProfileApproved, creators.statusUpdates[5])
		require.Len(t, reviews.reviews, 1)
		assert.Equal(t, database.ReviewSubjectProfile, reviews.reviews[0].SubjectType)
		assert.Equal(t, uint(99), reviews.reviews[0].ReviewerID)
	})

	t.Run("pending profile is rejected", func(t *testing.T) {
		h, creators, _ := newHandler(database.ProfilePending)
		recorder := postJSON(adminRouter(h), "/creators/5/review", `{"decision":"rejected"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, database.ProfileRejected, creators.statusUpdates[5])
	})

	t.Run("already reviewed profile conflicts", func(t *testing.T) {
		h, creators, reviews := newHandler(database.ProfileApproved)
		recorder := postJSON(adminRouter(h), "/creators/5/review", `{"decision":"rejected"}`)

		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Empty(t, creators.statusUpdates)
		assert.Empty(t, reviews.reviews)
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		h, _, _ := newHandler(database.ProfilePending)
		recorder := postJSON(adminRouter(h), "/creators/404/review", `{"decision":"approved"}`)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("unknown decision is rejected", func(t *testing.T) {
		h, _, _ := newHandler(database.ProfilePending)
		recorder := postJSON(adminRouter(h), "/creators/5/review", `{"decision":"maybe"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestReviewPayout(t *testing.T) {
	newHandler := func(status string) (*Handler, *stubPayoutStore, *stubReviewStore) {
		payouts := &stubPayoutStore{payouts: map[uint]*database.Payout{
			7: {ID: 7, CreatorID: 3, Status: status},
		}}
		reviews := &stubReviewStore{}
		h := &Handler{payouts: payouts, reviews: reviews, logger: zap.NewNop()}
		return h, payouts, reviews
	}

	t.Run("requested payout is approved", func(t *testing.T) {
		h, payouts, reviews := newHandler(database.PayoutRequested)
		recorder := postJSON(adminRouter(h), "/payouts/7/review", `{"decision":"approved"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, database.PayoutApproved, payouts.reviewed[7])
		require.Len(t, reviews.reviews, 1)
		assert.Equal(t, database.ReviewSubjectPayout, reviews.reviews[0].SubjectType)
	})

	t.Run("already reviewed payout conflicts", func(t *testing.T) {
		h, payouts, reviews := newHandler(database.PayoutApproved)
		recorder := postJSON(adminRouter(h), "/payouts/7/review", `{"decision":"approved"}`)

		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Empty(t, payouts.reviewed)
		assert.Empty(t, reviews.reviews)
	})
}
