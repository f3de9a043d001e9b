// Package domain contains core types for SDK API keys.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// APIKey stores hashed SDK credentials scoped to a customer. The plain
// key is shown once at issue time and only the hash is persisted.
type APIKey struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	CustomerID snowflake.ID   `gorm:"column:customer_id;not null;index"`
	KeyHash    string         `gorm:"column:key_hash;type:text;not null;uniqueIndex"`
	Scopes     pq.StringArray `gorm:"type:text[];not null"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastUsedAt *time.Time     `gorm:"column:last_used_at"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

const ScopeSubscriptionRead = "subscription:read"
