package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/entitle/pkg/db/pagination"
)

// Response is the caller-facing view of a subscription. Status is the
// effective status at read time, not necessarily the stored field.
type Response struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customerId"`
	PlanSKU       string     `json:"planSku"`
	Status        Status     `json:"status"`
	RequestedAt   time.Time  `json:"requestedAt"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	ActivatedAt   *time.Time `json:"activatedAt,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

type RequestSubscriptionRequest struct {
	PlanSKU string `json:"planSku"`
}

type AssignSubscriptionRequest struct {
	CustomerID string `json:"customerId"`
	PlanSKU    string `json:"planSku"`
}

type GetCurrentRequest struct {
	// CustomerID scopes the lookup for admins. Customer principals always
	// read their own record and must not set it to another customer.
	CustomerID string `form:"customerId"`
}

type ListHistoryRequest struct {
	CustomerID string `form:"customerId"`
	Status     string `form:"status"`
	Sort       string `form:"sort"`
	pagination.Pagination
}

type ListHistoryResponse struct {
	Subscriptions []Response          `json:"subscriptions"`
	PageInfo      pagination.PageInfo `json:"pageInfo"`
}

type StatsResponse struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"byStatus"`
}

type Service interface {
	// Request creates a requested row for the calling customer. An
	// existing active subscription does not block the request; conflicts
	// surface at activation.
	Request(ctx context.Context, req RequestSubscriptionRequest) (Response, error)
	// Approve moves a requested subscription to approved. Admin only.
	Approve(ctx context.Context, id string) (Response, error)
	// Assign activates the customer's pending subscription for the plan,
	// or creates and activates one in a single call. Admin only.
	Assign(ctx context.Context, req AssignSubscriptionRequest) (Response, error)
	// Deactivate ends an effectively active subscription, or cancels a
	// pending one (admin only for the latter).
	Deactivate(ctx context.Context, id string) (Response, error)
	// GetCurrent returns the subscription whose effective status is
	// active, or ErrSubscriptionNotFound.
	GetCurrent(ctx context.Context, req GetCurrentRequest) (Response, error)
	// ListHistory returns subscriptions ordered by requested_at.
	ListHistory(ctx context.Context, req ListHistoryRequest) (ListHistoryResponse, error)
	// Stats aggregates effective status counts for the admin dashboard.
	Stats(ctx context.Context) (StatsResponse, error)
}
