package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/identity"
	"gorm.io/gorm"
)

// SecretResponse carries the plain key back to the caller exactly once.
type SecretResponse struct {
	APIKey    string     `json:"apiKey"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type Service interface {
	// IssueForCustomer returns a fresh API key for the customer. An
	// existing active key for the same customer is revoked first so only
	// one key is live at a time.
	IssueForCustomer(ctx context.Context, customerID snowflake.ID) (*SecretResponse, error)
	// Revoke deactivates every live key the customer holds.
	Revoke(ctx context.Context, customerID snowflake.ID) error
	// ResolveKey maps a raw key to its owning customer. Expired and
	// revoked keys resolve to ErrNotFound.
	ResolveKey(ctx context.Context, raw string) (snowflake.ID, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error
	Update(ctx context.Context, db *gorm.DB, key *APIKey) error
	FindByHash(ctx context.Context, db *gorm.DB, hash string) (*APIKey, error)
	FindActiveByCustomerID(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]APIKey, error)
}

var (
	// ErrNotFound aliases the identity sentinel so resolver checks match.
	ErrNotFound        = identity.ErrKeyNotFound
	ErrInvalidCustomer = errors.New("invalid_customer")
)
