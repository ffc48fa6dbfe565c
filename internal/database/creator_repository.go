package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CreatorRepository persists creator profiles.
type CreatorRepository struct {
	db *gorm.DB
}

// NewCreatorRepository creates a creator repository.
func NewCreatorRepository(db *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// Create inserts a new profile.
func (r *CreatorRepository) Create(ctx context.Context, profile *CreatorProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create creator profile: %w", err)
	}
	return nil
}

// GetByID fetches a profile by primary key.
func (r *CreatorRepository) GetByID(ctx context.Context, id uint) (*CreatorProfile, error) {
	var profile CreatorProfile
	err := r.db.WithContext(ctx).First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator profile: %w", err)
	}
	return &profile, nil
}

// GetByUserID fetches the profile owned by a user.
func (r *CreatorRepository) GetByUserID(ctx context.Context, userID uint) (*CreatorProfile, error) {
	var profile CreatorProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator profile by user: %w", err)
	}
	return &profile, nil
}

// GetBySubID fetches the profile owning an attribution identifier.
func (r *CreatorRepository) GetBySubID(ctx context.Context, subID string) (*CreatorProfile, error) {
	var profile CreatorProfile
	err := r.db.WithContext(ctx).Where("sub_id = ?", subID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator profile by sub id: %w", err)
	}
	return &profile, nil
}

// List returns profiles, optionally filtered by status, newest first.
func (r *CreatorRepository) List(ctx context.Context, status string, limit, offset int) ([]CreatorProfile, error) {
	query := r.db.WithContext(ctx).Model(&CreatorProfile{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var profiles []CreatorProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list creator profiles: %w", err)
	}
	return profiles, nil
}

// Update saves profile field changes.
func (r *CreatorRepository) Update(ctx context.Context, profile *CreatorProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update creator profile: %w", err)
	}
	return nil
}

// UpdateStatus moves a profile through the review lifecycle.
func (r *CreatorRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).Model(&CreatorProfile{}).Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update creator status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
