package repository

import (
	"context"

	plandomain "github.com/smallbiznis/entitle/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() plandomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *plandomain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (id, sku, name, description, price_minor_units, currency, validity_months, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.SKU,
		plan.Name,
		plan.Description,
		plan.PriceMinorUnits,
		plan.Currency,
		plan.ValidityMonths,
		plan.IsActive,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *plandomain.Plan) error {
	return db.WithContext(ctx).Exec(
		`UPDATE plans
		 SET name = ?, description = ?, price_minor_units = ?, currency = ?, validity_months = ?, is_active = ?, updated_at = ?
		 WHERE sku = ?`,
		plan.Name,
		plan.Description,
		plan.PriceMinorUnits,
		plan.Currency,
		plan.ValidityMonths,
		plan.IsActive,
		plan.UpdatedAt,
		plan.SKU,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, sku string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM plans WHERE sku = ?`,
		sku,
	).Error
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*plandomain.Plan, error) {
	var plan plandomain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, sku, name, description, price_minor_units, currency, validity_months, is_active, created_at, updated_at
		 FROM plans WHERE sku = ?`,
		sku,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, includeInactive bool) ([]plandomain.Plan, error) {
	query := `SELECT id, sku, name, description, price_minor_units, currency, validity_months, is_active, created_at, updated_at
		 FROM plans`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sku ASC`

	var plans []plandomain.Plan
	if err := db.WithContext(ctx).Raw(query).Scan(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) CountSubscriptionsBySKU(ctx context.Context, db *gorm.DB, sku string) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM subscriptions WHERE plan_sku = ?`,
		sku,
	).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
