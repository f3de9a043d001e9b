package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/entitle/internal/clock"
	"github.com/smallbiznis/entitle/internal/config"
)

const tokenIssuer = "entitle"

// Claims is the bearer token payload shared by the console login flows.
type Claims struct {
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 bearer tokens.
type TokenCodec struct {
	secret  []byte
	runtime *config.RuntimeConfigHolder
	clock   clock.Clock
}

var ErrMissingSigningSecret = errors.New("missing_signing_secret")

func NewTokenCodec(secret string, runtime *config.RuntimeConfigHolder, clk clock.Clock) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningSecret
	}
	return &TokenCodec{
		secret:  []byte(secret),
		runtime: runtime,
		clock:   clk,
	}, nil
}

// Issue signs a token for the principal. Returns the token and its expiry.
func (c *TokenCodec) Issue(principal Principal) (string, time.Time, error) {
	if !principal.IsAdmin() && !principal.IsCustomer() {
		return "", time.Time{}, ErrUnauthenticated
	}

	now := c.clock.Now()
	expiresAt := now.Add(time.Duration(c.runtime.Get().TokenTTLMinutes) * time.Minute)

	claims := Claims{
		Role: string(principal.Kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   principal.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if principal.IsCustomer() {
		claims.CustomerID = principal.CustomerID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify checks signature and expiry and rebuilds the principal from claims.
// Any failure yields ErrUnauthenticated; there is no anonymous fallback.
func (c *TokenCodec) Verify(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Anonymous(), ErrUnauthenticated
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		return Anonymous(), ErrUnauthenticated
	}

	accountID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return Anonymous(), ErrUnauthenticated
	}

	switch Kind(claims.Role) {
	case KindAdmin:
		return Admin(accountID), nil
	case KindCustomer:
		customerID, err := snowflake.ParseString(claims.CustomerID)
		if err != nil || customerID == 0 {
			return Anonymous(), ErrUnauthenticated
		}
		return Customer(accountID, customerID), nil
	default:
		return Anonymous(), ErrUnauthenticated
	}
}
