package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/identity"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"-"`
}

type LoginResult struct {
	Principal identity.Principal
	Token     string
	ExpiresAt time.Time
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type CreateAccountRequest struct {
	Email      string
	Password   string
	Role       Role
	CustomerID snowflake.ID
}

type Service interface {
	// Login authenticates an email/password pair against accounts of the
	// requested role and issues a bearer token.
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	// Signup provisions a customer account together with its profile.
	Signup(ctx context.Context, req SignupRequest) (LoginResult, error)
	// CreateAccount provisions an account row without logging in. Used by
	// the admin customer-creation flow and the seeder.
	CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrAccountExists      = errors.New("account_exists")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidName        = errors.New("invalid_name")
	ErrAccountNotFound    = errors.New("account_not_found")
)
