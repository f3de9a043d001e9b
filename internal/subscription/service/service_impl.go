package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/clock"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
	"github.com/smallbiznis/entitle/internal/identity"
	plandomain "github.com/smallbiznis/entitle/internal/plan/domain"
	"github.com/smallbiznis/entitle/internal/principalctx"
	subscriptiondomain "github.com/smallbiznis/entitle/internal/subscription/domain"
	"github.com/smallbiznis/entitle/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	clock        clock.Clock
	repo         subscriptiondomain.Repository
	customerRepo customerdomain.Repository

	plansvc plandomain.Service
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         subscriptiondomain.Repository
	CustomerRepo customerdomain.Repository

	Plansvc plandomain.Service
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("subscription.service"),

		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,

		plansvc: p.Plansvc,
	}
}

// Request implements domain.Service.
func (s *Service) Request(ctx context.Context, req subscriptiondomain.RequestSubscriptionRequest) (subscriptiondomain.Response, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}
	if !principal.IsCustomer() {
		return subscriptiondomain.Response{}, subscriptiondomain.ErrForbidden
	}

	plan, err := s.activePlan(ctx, req.PlanSKU)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	now := s.clock.Now()
	sub := subscriptiondomain.Subscription{
		ID:          s.genID.Generate(),
		CustomerID:  principal.CustomerID,
		PlanSKU:     plan.SKU,
		Status:      subscriptiondomain.StatusRequested,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &sub); err != nil {
		return subscriptiondomain.Response{}, err
	}

	s.log.Info("subscription requested",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("customer_id", sub.CustomerID.String()),
		zap.String("plan_sku", sub.PlanSKU),
	)

	return toResponse(&sub, now), nil
}

// Approve implements domain.Service.
func (s *Service) Approve(ctx context.Context, id string) (subscriptiondomain.Response, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}
	if !principal.IsAdmin() {
		return subscriptiondomain.Response{}, subscriptiondomain.ErrForbidden
	}

	subscriptionID, err := parseID(id, subscriptiondomain.ErrInvalidSubscription)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	var resp subscriptiondomain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.FindByIDForUpdate(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}

		now := s.clock.Now()
		effective := subscriptiondomain.EffectiveStatus(sub, now)
		if effective != subscriptiondomain.StatusRequested {
			return subscriptiondomain.NewTransitionError(effective, subscriptiondomain.StatusApproved)
		}

		if _, err := s.activePlan(ctx, sub.PlanSKU); err != nil {
			return err
		}

		sub.Status = subscriptiondomain.StatusApproved
		sub.ApprovedAt = &now
		sub.UpdatedAt = now
		if err := s.repo.UpdateLifecycle(ctx, tx, sub); err != nil {
			return err
		}

		resp = toResponse(sub, now)
		return nil
	})
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	s.log.Info("subscription approved", zap.String("subscription_id", resp.ID))

	return resp, nil
}

// Assign implements domain.Service. The customer row is locked before the
// single-active check so two concurrent assignments for the same customer
// serialize; exactly one sees no effective active row.
func (s *Service) Assign(ctx context.Context, req subscriptiondomain.AssignSubscriptionRequest) (subscriptiondomain.Response, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}
	if !principal.IsAdmin() {
		return subscriptiondomain.Response{}, subscriptiondomain.ErrForbidden
	}

	customerID, err := parseID(req.CustomerID, subscriptiondomain.ErrInvalidCustomer)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	plan, err := s.activePlan(ctx, req.PlanSKU)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	var resp subscriptiondomain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.LockByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return customerdomain.ErrCustomerNotFound
		}

		now := s.clock.Now()
		if active, err := s.repo.FindEffectiveActiveByCustomer(ctx, tx, customerID, now); err != nil {
			return err
		} else if active != nil {
			return subscriptiondomain.ErrActiveConflict
		}

		expiresAt := now.AddDate(0, plan.ValidityMonths, 0)

		pending, err := s.repo.FindPendingByCustomerAndSKU(ctx, tx, customerID, plan.SKU)
		if err != nil {
			return err
		}

		if pending != nil {
			if !subscriptiondomain.CanTransition(pending.Status, subscriptiondomain.StatusActive) {
				return subscriptiondomain.NewTransitionError(pending.Status, subscriptiondomain.StatusActive)
			}
			if pending.ApprovedAt == nil {
				// Direct requested -> active keeps the audit trail whole.
				pending.ApprovedAt = &now
			}
			pending.Status = subscriptiondomain.StatusActive
			pending.ActivatedAt = &now
			pending.ExpiresAt = &expiresAt
			pending.UpdatedAt = now
			if err := s.repo.UpdateLifecycle(ctx, tx, pending); err != nil {
				return err
			}
			resp = toResponse(pending, now)
			return nil
		}

		sub := subscriptiondomain.Subscription{
			ID:          s.genID.Generate(),
			CustomerID:  customerID,
			PlanSKU:     plan.SKU,
			Status:      subscriptiondomain.StatusActive,
			RequestedAt: now,
			ApprovedAt:  &now,
			ActivatedAt: &now,
			ExpiresAt:   &expiresAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, tx, &sub); err != nil {
			return err
		}
		resp = toResponse(&sub, now)
		return nil
	})
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	s.log.Info("subscription assigned",
		zap.String("subscription_id", resp.ID),
		zap.String("customer_id", resp.CustomerID),
		zap.String("plan_sku", resp.PlanSKU),
	)

	return resp, nil
}

// Deactivate implements domain.Service.
func (s *Service) Deactivate(ctx context.Context, id string) (subscriptiondomain.Response, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}
	if !principal.IsAdmin() && !principal.IsCustomer() {
		return subscriptiondomain.Response{}, subscriptiondomain.ErrForbidden
	}

	subscriptionID, err := parseID(id, subscriptiondomain.ErrInvalidSubscription)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	var resp subscriptiondomain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.FindByIDForUpdate(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}

		if principal.IsCustomer() && sub.CustomerID != principal.CustomerID {
			return subscriptiondomain.ErrForbidden
		}

		now := s.clock.Now()
		effective := subscriptiondomain.EffectiveStatus(sub, now)

		switch effective {
		case subscriptiondomain.StatusActive:
			// Admin or the owning customer.
		case subscriptiondomain.StatusRequested, subscriptiondomain.StatusApproved:
			// Cancelling a not-yet-active subscription is an admin move.
			if !principal.IsAdmin() {
				return subscriptiondomain.ErrForbidden
			}
		default:
			return subscriptiondomain.NewTransitionError(effective, subscriptiondomain.StatusInactive)
		}

		sub.Status = subscriptiondomain.StatusInactive
		sub.DeactivatedAt = &now
		sub.UpdatedAt = now
		if err := s.repo.UpdateLifecycle(ctx, tx, sub); err != nil {
			return err
		}

		resp = toResponse(sub, now)
		return nil
	})
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	s.log.Info("subscription deactivated", zap.String("subscription_id", resp.ID))

	return resp, nil
}

// GetCurrent implements domain.Service.
func (s *Service) GetCurrent(ctx context.Context, req subscriptiondomain.GetCurrentRequest) (subscriptiondomain.Response, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	customerID, err := s.scopeCustomer(principal, req.CustomerID, true)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}

	now := s.clock.Now()
	s.expireStale(ctx, customerID, now)

	sub, err := s.repo.FindEffectiveActiveByCustomer(ctx, s.db, customerID, now)
	if err != nil {
		return subscriptiondomain.Response{}, err
	}
	if sub == nil {
		return subscriptiondomain.Response{}, subscriptiondomain.ErrSubscriptionNotFound
	}

	return toResponse(sub, now), nil
}

// ListHistory implements domain.Service.
func (s *Service) ListHistory(ctx context.Context, req subscriptiondomain.ListHistoryRequest) (subscriptiondomain.ListHistoryResponse, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.ListHistoryResponse{}, err
	}

	customerID, err := s.scopeCustomer(principal, req.CustomerID, false)
	if err != nil {
		return subscriptiondomain.ListHistoryResponse{}, err
	}

	status := subscriptiondomain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != "" && !subscriptiondomain.IsValidStatus(status) {
		return subscriptiondomain.ListHistoryResponse{}, subscriptiondomain.ErrInvalidStatus
	}

	page := req.Pagination.Normalize()

	now := s.clock.Now()
	s.expireStale(ctx, customerID, now)

	subs, total, err := s.repo.List(ctx, s.db, subscriptiondomain.ListFilter{
		CustomerID: customerID,
		Status:     status,
		Sort:       pagination.NormalizeSort(req.Sort),
		Page:       page,
	})
	if err != nil {
		return subscriptiondomain.ListHistoryResponse{}, err
	}

	items := make([]subscriptiondomain.Response, 0, len(subs))
	for i := range subs {
		items = append(items, toResponse(&subs[i], now))
	}

	return subscriptiondomain.ListHistoryResponse{
		Subscriptions: items,
		PageInfo: pagination.PageInfo{
			Page:     page.Page,
			PageSize: page.PageSize,
			Total:    total,
		},
	}, nil
}

// Stats implements domain.Service.
func (s *Service) Stats(ctx context.Context) (subscriptiondomain.StatsResponse, error) {
	principal, err := principalFrom(ctx)
	if err != nil {
		return subscriptiondomain.StatsResponse{}, err
	}
	if !principal.IsAdmin() {
		return subscriptiondomain.StatsResponse{}, subscriptiondomain.ErrForbidden
	}

	counts, total, err := s.repo.CountByEffectiveStatus(ctx, s.db, s.clock.Now())
	if err != nil {
		return subscriptiondomain.StatsResponse{}, err
	}

	return subscriptiondomain.StatsResponse{Total: total, ByStatus: counts}, nil
}

// scopeCustomer resolves which customer a read targets. Customers always
// read themselves; naming another customer is Forbidden, never NotFound.
// Admins pass an explicit id, or zero to read across customers when
// required is false.
func (s *Service) scopeCustomer(principal identity.Principal, requested string, required bool) (snowflake.ID, error) {
	requested = strings.TrimSpace(requested)

	if principal.IsCustomer() {
		if requested != "" {
			id, err := parseID(requested, subscriptiondomain.ErrInvalidCustomer)
			if err != nil {
				return 0, err
			}
			if id != principal.CustomerID {
				return 0, subscriptiondomain.ErrForbidden
			}
		}
		return principal.CustomerID, nil
	}

	if !principal.IsAdmin() {
		return 0, subscriptiondomain.ErrForbidden
	}

	if requested == "" {
		if required {
			return 0, subscriptiondomain.ErrInvalidCustomer
		}
		return 0, nil
	}
	return parseID(requested, subscriptiondomain.ErrInvalidCustomer)
}

func (s *Service) activePlan(ctx context.Context, sku string) (plandomain.Plan, error) {
	plan, err := s.plansvc.GetBySKU(ctx, sku)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if !plan.IsActive {
		return plandomain.Plan{}, plandomain.ErrPlanInactive
	}
	return plan, nil
}

// expireStale persists derived expiry on read paths. Best effort; the
// effective status is recomputed either way.
func (s *Service) expireStale(ctx context.Context, customerID snowflake.ID, now time.Time) {
	if err := s.repo.ExpireStale(ctx, s.db, customerID, now); err != nil {
		s.log.Warn("expiry write-back failed", zap.Error(err))
	}
}

func principalFrom(ctx context.Context) (identity.Principal, error) {
	principal, ok := principalctx.FromContext(ctx)
	if !ok || principal.Kind == identity.KindAnonymous {
		return identity.Principal{}, identity.ErrUnauthenticated
	}
	return principal, nil
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func toResponse(sub *subscriptiondomain.Subscription, now time.Time) subscriptiondomain.Response {
	return subscriptiondomain.Response{
		ID:            sub.ID.String(),
		CustomerID:    sub.CustomerID.String(),
		PlanSKU:       sub.PlanSKU,
		Status:        subscriptiondomain.EffectiveStatus(sub, now),
		RequestedAt:   sub.RequestedAt,
		ApprovedAt:    sub.ApprovedAt,
		ActivatedAt:   sub.ActivatedAt,
		ExpiresAt:     sub.ExpiresAt,
		DeactivatedAt: sub.DeactivatedAt,
	}
}
