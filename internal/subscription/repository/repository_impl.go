package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/smallbiznis/entitle/internal/subscription/domain"
	"github.com/smallbiznis/entitle/pkg/db/pagination"
	"gorm.io/gorm"
)

const subscriptionColumns = `id, customer_id, plan_sku, status, requested_at, approved_at,
	 activated_at, expires_at, deactivated_at, created_at, updated_at`

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (
			id, customer_id, plan_sku, status, requested_at, approved_at,
			activated_at, expires_at, deactivated_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.CustomerID,
		sub.PlanSKU,
		sub.Status,
		sub.RequestedAt,
		sub.ApprovedAt,
		sub.ActivatedAt,
		sub.ExpiresAt,
		sub.DeactivatedAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, id).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) FindEffectiveActiveByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, now time.Time) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE customer_id = ? AND status = ? AND expires_at > ?
		 ORDER BY activated_at DESC
		 LIMIT 1`,
		customerID,
		subscriptiondomain.StatusActive,
		now,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) FindPendingByCustomerAndSKU(ctx context.Context, db *gorm.DB, customerID snowflake.ID, sku string) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE customer_id = ? AND plan_sku = ? AND status IN ?
		 ORDER BY requested_at DESC
		 LIMIT 1`,
		customerID,
		sku,
		[]subscriptiondomain.Status{
			subscriptiondomain.StatusRequested,
			subscriptiondomain.StatusApproved,
		},
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) UpdateLifecycle(ctx context.Context, db *gorm.DB, sub *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET status = ?, approved_at = ?, activated_at = ?, expires_at = ?, deactivated_at = ?, updated_at = ?
		 WHERE id = ?`,
		sub.Status,
		sub.ApprovedAt,
		sub.ActivatedAt,
		sub.ExpiresAt,
		sub.DeactivatedAt,
		sub.UpdatedAt,
		sub.ID,
	).Error
}

func (r *repo) ExpireStale(ctx context.Context, db *gorm.DB, customerID snowflake.ID, now time.Time) error {
	query := `UPDATE subscriptions
		 SET status = ?, updated_at = ?
		 WHERE status = ? AND expires_at <= ?`
	args := []any{
		subscriptiondomain.StatusExpired,
		now,
		subscriptiondomain.StatusActive,
		now,
	}
	if customerID != 0 {
		query += ` AND customer_id = ?`
		args = append(args, customerID)
	}
	return db.WithContext(ctx).Exec(query, args...).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter subscriptiondomain.ListFilter) ([]subscriptiondomain.Subscription, int64, error) {
	where := `WHERE 1=1`
	args := []any{}
	if filter.CustomerID != 0 {
		where += ` AND customer_id = ?`
		args = append(args, filter.CustomerID)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}

	var total int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM subscriptions `+where, args...,
	).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY requested_at ASC, id ASC`
	if filter.Sort == pagination.SortDesc {
		order = ` ORDER BY requested_at DESC, id DESC`
	}

	var subs []subscriptiondomain.Subscription
	listArgs := append(args, filter.Page.PageSize, filter.Page.Offset())
	if err := db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+` FROM subscriptions `+where+order+`
		 LIMIT ? OFFSET ?`,
		listArgs...,
	).Scan(&subs).Error; err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

func (r *repo) CountByEffectiveStatus(ctx context.Context, db *gorm.DB, now time.Time) (map[subscriptiondomain.Status]int64, int64, error) {
	var rows []struct {
		Status subscriptiondomain.Status `gorm:"column:status"`
		Count  int64                     `gorm:"column:count"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
			CASE WHEN status = ? AND expires_at <= ? THEN ? ELSE status END AS status,
			COUNT(1) AS count
		 FROM subscriptions
		 GROUP BY 1`,
		subscriptiondomain.StatusActive,
		now,
		subscriptiondomain.StatusExpired,
	).Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[subscriptiondomain.Status]int64, len(rows))
	var total int64
	for _, row := range rows {
		counts[row.Status] += row.Count
		total += row.Count
	}
	return counts, total, nil
}
