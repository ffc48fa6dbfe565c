package database

import (
	"time"

	"gorm.io/gorm"
)

// User roles.
const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Creator profile lifecycle states.
const (
	ProfilePending  = "pending"
	ProfileApproved = "approved"
	ProfileRejected = "rejected"
)

// Payout lifecycle states.
const (
	PayoutRequested = "requested"
	PayoutApproved  = "approved"
	PayoutRejected  = "rejected"
	PayoutPaid      = "paid"
)

// Review subject kinds.
const (
	ReviewSubjectProfile = "creator_profile"
	ReviewSubjectPayout  = "payout"
)

// Review decisions.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// User represents a platform account, creator or admin.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"not null;default:'creator'"` // creator, admin
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreatorProfile represents a creator's public profile and their assigned
// attribution identifier with the partner network.
type CreatorProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	Website     string    `json:"website"`
	Bio         string    `json:"bio"`
	SubID       string    `json:"sub_id" gorm:"uniqueIndex;not null"` // attribution identifier
	Status      string    `json:"status" gorm:"not null;default:'pending'"` // pending, approved, rejected
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Payout represents a creator's payout request and its review lifecycle.
type Payout struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CreatorID   uint       `json:"creator_id" gorm:"index;not null"`
	Reference   string     `json:"reference" gorm:"uniqueIndex;not null"`
	Amount      float64    `json:"amount" gorm:"not null"`
	Currency    string     `json:"currency" gorm:"not null;default:'USD'"`
	Status      string     `json:"status" gorm:"not null;default:'requested'"` // requested, approved, rejected, paid
	PeriodStart string     `json:"period_start" gorm:"not null"`               // YYYY-MM-DD
	PeriodEnd   string     `json:"period_end" gorm:"not null"`
	Notes       string     `json:"notes"`
	RequestedAt time.Time  `json:"requested_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewedBy  *uint      `json:"reviewed_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate stamps the request time. ListByCreator and ListByStatus
// order on it, so a zero value would scramble the review queue.
func (p *Payout) BeforeCreate(*gorm.DB) error {
	if p.RequestedAt.IsZero() {
		p.RequestedAt = time.Now().UTC()
	}
	return nil
}

// AdminReview records one admin decision over a profile or payout.
type AdminReview struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SubjectType string    `json:"subject_type" gorm:"index:idx_review_subject;not null"` // creator_profile, payout
	SubjectID   uint      `json:"subject_id" gorm:"index:idx_review_subject;not null"`
	ReviewerID  uint      `json:"reviewer_id" gorm:"not null"`
	Decision    string    `json:"decision" gorm:"not null"` // approved, rejected
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// EarningRecord is the locally persisted copy of attributed commissions,
// used as the fallback earnings source when the partner network is
// unavailable.
type EarningRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatorID  uint      `json:"creator_id" gorm:"index;not null"`
	SubID      string    `json:"sub_id" gorm:"index;not null"`
	OrderID    string    `json:"order_id" gorm:"uniqueIndex;not null"`
	SaleAmount float64   `json:"sale_amount" gorm:"not null"`
	Commission float64   `json:"commission" gorm:"not null"`
	Network    string    `json:"network"`
	OccurredAt time.Time `json:"occurred_at" gorm:"index;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClickEvent records one tracked click, the raw material for the local
// analytics aggregator.
type ClickEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatorID  uint      `json:"creator_id" gorm:"index;not null"`
	SubID      string    `json:"sub_id" gorm:"index;not null"`
	LinkID     string    `json:"link_id"`
	Referrer   string    `json:"referrer"`
	OccurredAt time.Time `json:"occurred_at" gorm:"index;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
