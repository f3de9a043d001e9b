package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/entitle/internal/principalctx"
)

const headerAPIKey = "X-API-Key"

// BearerAuthRequired resolves the Authorization bearer token to a principal
// and stores it in the request context. Both console channels share it;
// role checks come separately.
func (s *Server) BearerAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.resolver.ResolveBearer(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(principalctx.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// APIKeyRequired authenticates SDK requests. API keys only ever resolve to
// a customer principal.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerAPIKey))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.resolver.ResolveAPIKey(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(principalctx.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireAdmin gates a route group to admin principals.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalctx.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !principal.IsAdmin() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireCustomer gates a route group to customer principals.
func (s *Server) RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalctx.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !principal.IsCustomer() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
