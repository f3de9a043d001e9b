package principalctx

import (
	"context"

	"github.com/smallbiznis/entitle/internal/identity"
)

// PrincipalContextKey is the request context key for the resolved principal.
type PrincipalContextKey struct{}

// WithPrincipal stores the resolved principal in the context.
func WithPrincipal(ctx context.Context, principal identity.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey{}, principal)
}

// FromContext returns the resolved principal from context, if set.
func FromContext(ctx context.Context) (identity.Principal, bool) {
	if ctx == nil {
		return identity.Anonymous(), false
	}

	value := ctx.Value(PrincipalContextKey{})
	if principal, ok := value.(identity.Principal); ok {
		return principal, true
	}
	return identity.Anonymous(), false
}
