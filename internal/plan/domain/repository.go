package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
	Update(ctx context.Context, db *gorm.DB, plan *Plan) error
	Delete(ctx context.Context, db *gorm.DB, sku string) error
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Plan, error)
	List(ctx context.Context, db *gorm.DB, includeInactive bool) ([]Plan, error)
	CountSubscriptionsBySKU(ctx context.Context, db *gorm.DB, sku string) (int64, error)
}
