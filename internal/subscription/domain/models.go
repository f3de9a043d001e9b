// Package domain contains the subscription lifecycle model. Status is a
// closed enumeration with an explicit transition table; time-based expiry
// is derived at read time, never swept by a background job.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusExpired   Status = "expired"
)

// Subscription is an entitlement instance. customer_id and plan_sku never
// change after creation; a plan change means a fresh row. Terminal rows
// (inactive, expired) are kept as history and never deleted.
type Subscription struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	CustomerID    snowflake.ID `gorm:"column:customer_id;not null;index"`
	PlanSKU       string       `gorm:"column:plan_sku;type:text;not null"`
	Status        Status       `gorm:"type:text;not null"`
	RequestedAt   time.Time    `gorm:"column:requested_at;not null"`
	ApprovedAt    *time.Time   `gorm:"column:approved_at"`
	ActivatedAt   *time.Time   `gorm:"column:activated_at"`
	ExpiresAt     *time.Time   `gorm:"column:expires_at"`
	DeactivatedAt *time.Time   `gorm:"column:deactivated_at"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// EffectiveStatus derives the status visible to callers at a given
// instant. A stored active row past its expiry reads as expired whether
// or not the row has been written back yet.
func EffectiveStatus(sub *Subscription, now time.Time) Status {
	if sub.Status == StatusActive && sub.ExpiresAt != nil && !now.Before(*sub.ExpiresAt) {
		return StatusExpired
	}
	return sub.Status
}

// CanTransition reports whether the edge exists in the lifecycle table.
// Cancellation of a not-yet-active subscription is modeled as a
// transition into inactive with no activated_at set.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusRequested:
		return to == StatusApproved || to == StatusActive || to == StatusInactive
	case StatusApproved:
		return to == StatusActive || to == StatusInactive
	case StatusActive:
		return to == StatusInactive || to == StatusExpired
	default:
		// inactive and expired are terminal.
		return false
	}
}

func IsValidStatus(status Status) bool {
	switch status {
	case StatusRequested, StatusApproved, StatusActive, StatusInactive, StatusExpired:
		return true
	default:
		return false
	}
}
