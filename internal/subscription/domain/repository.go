package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID snowflake.ID
	Status     Status
	Sort       string
	Page       pagination.Pagination
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	// FindEffectiveActiveByCustomer returns the row whose stored status is
	// active and whose expiry is still in the future.
	FindEffectiveActiveByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, now time.Time) (*Subscription, error)
	// FindPendingByCustomerAndSKU returns the newest requested or approved
	// row for the customer and plan.
	FindPendingByCustomerAndSKU(ctx context.Context, db *gorm.DB, customerID snowflake.ID, sku string) (*Subscription, error)
	UpdateLifecycle(ctx context.Context, db *gorm.DB, sub *Subscription) error
	// ExpireStale writes back expired for stored-active rows past their
	// expiry. Guarded on status so it never races a concurrent transition.
	ExpireStale(ctx context.Context, db *gorm.DB, customerID snowflake.ID, now time.Time) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Subscription, int64, error)
	CountByEffectiveStatus(ctx context.Context, db *gorm.DB, now time.Time) (map[Status]int64, int64, error)
}
