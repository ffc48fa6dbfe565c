package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// EarningsRepository reads the locally persisted earnings and click data.
// It backs both the analytics aggregator and the fallback earnings source.
type EarningsRepository struct {
	db *gorm.DB
}

// NewEarningsRepository creates an earnings repository.
func NewEarningsRepository(db *gorm.DB) *EarningsRepository {
	return &EarningsRepository{db: db}
}

// RecordEarning stores one attributed commission.
func (r *EarningsRepository) RecordEarning(ctx context.Context, record *EarningRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record earning: %w", err)
	}
	return nil
}

// RecordClick stores one tracked click.
func (r *EarningsRepository) RecordClick(ctx context.Context, event *ClickEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

// EarningsWindow returns a creator's earning records inside [start, end].
func (r *EarningsRepository) EarningsWindow(ctx context.Context, creatorID uint, start, end time.Time) ([]EarningRecord, error) {
	var records []EarningRecord
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND occurred_at BETWEEN ? AND ?", creatorID, start, end).
		Order("occurred_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings window: %w", err)
	}
	return records, nil
}

// ClickCount returns the number of tracked clicks inside [start, end].
func (r *EarningsRepository) ClickCount(ctx context.Context, creatorID uint, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ClickEvent{}).
		Where("creator_id = ? AND occurred_at BETWEEN ? AND ?", creatorID, start, end).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}
