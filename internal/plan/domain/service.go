package domain

import (
	"context"
	"errors"
)

type CreatePlanRequest struct {
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceMinorUnits int64  `json:"priceMinorUnits"`
	Currency        string `json:"currency"`
	ValidityMonths  int    `json:"validityMonths"`
}

type UpdatePlanRequest struct {
	SKU             string  `json:"-"`
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	PriceMinorUnits *int64  `json:"priceMinorUnits"`
	Currency        *string `json:"currency"`
	ValidityMonths  *int    `json:"validityMonths"`
	IsActive        *bool   `json:"isActive"`
}

type ListPlanRequest struct {
	// IncludeInactive widens the listing beyond purchasable plans. Only
	// the admin surface sets it.
	IncludeInactive bool `form:"includeInactive"`
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (Plan, error)
	Update(ctx context.Context, req UpdatePlanRequest) (Plan, error)
	GetBySKU(ctx context.Context, sku string) (Plan, error)
	List(ctx context.Context, req ListPlanRequest) ([]Plan, error)
	// Delete removes a plan that no subscription has ever referenced.
	// Plans with history are deactivated instead.
	Delete(ctx context.Context, sku string) error
}

var (
	ErrPlanNotFound    = errors.New("plan_not_found")
	ErrPlanExists      = errors.New("plan_exists")
	ErrPlanInactive    = errors.New("plan_inactive")
	ErrInvalidSKU      = errors.New("invalid_sku")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidValidity = errors.New("invalid_validity_months")
)
