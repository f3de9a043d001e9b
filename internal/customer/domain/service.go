package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type UpdateCustomerRequest struct {
	ID    snowflake.ID `json:"-"`
	Name  *string      `json:"name"`
	Phone *string      `json:"phone"`
}

type ListCustomerRequest struct {
	Search string `form:"search"`
	pagination.Pagination
}

type ListCustomerResponse struct {
	Customers []Customer          `json:"customers"`
	PageInfo  pagination.PageInfo `json:"pageInfo"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	// CreateTx creates the profile inside an existing transaction. Used by
	// the signup flow so the account and profile commit together.
	CreateTx(ctx context.Context, tx *gorm.DB, req CreateCustomerRequest) (Customer, error)
	Get(ctx context.Context, id snowflake.ID) (Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (Customer, error)
	// Deactivate soft deletes the profile. The customer's subscription
	// history is kept.
	Deactivate(ctx context.Context, id snowflake.ID) error
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
}

var (
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrCustomerExists   = errors.New("customer_exists")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
)
