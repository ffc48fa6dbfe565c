package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ReviewRepository persists admin review decisions.
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a review repository.
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create records one review decision.
func (r *ReviewRepository) Create(ctx context.Context, review *AdminReview) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListBySubject returns the review trail of one profile or payout.
func (r *ReviewRepository) ListBySubject(ctx context.Context, subjectType string, subjectID uint) ([]AdminReview, error) {
	var reviews []AdminReview
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
