package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PayoutRepository persists payout requests.
type PayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a payout repository.
func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create inserts a new payout request.
func (r *PayoutRepository) Create(ctx context.Context, payout *Payout) error {
	if err := r.db.WithContext(ctx).Create(payout).Error; err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}
	return nil
}

// GetByID fetches a payout by primary key.
func (r *PayoutRepository) GetByID(ctx context.Context, id uint) (*Payout, error) {
	var payout Payout
	err := r.db.WithContext(ctx).First(&payout, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return &payout, nil
}

// ListByCreator returns a creator's payouts, newest first.
func (r *PayoutRepository) ListByCreator(ctx context.Context, creatorID uint) ([]Payout, error) {
	var payouts []Payout
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).
		Order("requested_at DESC").Find(&payouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, nil
}

// ListByStatus returns payouts in a given lifecycle state, oldest first so
// the review queue is worked in request order.
func (r *PayoutRepository) ListByStatus(ctx context.Context, status string, limit int) ([]Payout, error) {
	query := r.db.WithContext(ctx).Where("status = ?", status).Order("requested_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var payouts []Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("failed to list payouts by status: %w", err)
	}
	return payouts, nil
}

// Review records an admin decision on a payout.
func (r *PayoutRepository) Review(ctx context.Context, id uint, status string, reviewerID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&Payout{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_at": at,
		"reviewed_by": reviewerID,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to review payout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
