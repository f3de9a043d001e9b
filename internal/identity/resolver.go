package identity

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// APIKeyLookup maps a raw SDK key to the owning customer. Implemented by the
// apikey service; a missing or revoked key returns ErrKeyNotFound.
type APIKeyLookup interface {
	ResolveKey(ctx context.Context, raw string) (snowflake.ID, error)
}

// Resolver turns inbound credentials into principals. Both schemes resolve
// independently; authorization stays with the callers.
type Resolver struct {
	codec *TokenCodec
	keys  APIKeyLookup
}

func NewResolver(codec *TokenCodec, keys APIKeyLookup) *Resolver {
	return &Resolver{codec: codec, keys: keys}
}

// ResolveBearer resolves a signed bearer token to Admin or Customer.
func (r *Resolver) ResolveBearer(ctx context.Context, token string) (Principal, error) {
	_ = ctx
	return r.codec.Verify(token)
}

// ResolveAPIKey resolves a long-lived per-customer key. API keys only ever
// resolve to customers.
func (r *Resolver) ResolveAPIKey(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Anonymous(), ErrUnauthenticated
	}

	customerID, err := r.keys.ResolveKey(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return Anonymous(), ErrUnauthenticated
		}
		return Anonymous(), err
	}

	return Customer(0, customerID), nil
}
