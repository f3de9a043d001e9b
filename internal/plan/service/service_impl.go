package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/clock"
	plandomain "github.com/smallbiznis/entitle/internal/plan/domain"
	"github.com/smallbiznis/entitle/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minValidityMonths = 1
	maxValidityMonths = 12
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  plandomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  plandomain.Repository
}

func NewService(p ServiceParam) plandomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("plan.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req plandomain.CreatePlanRequest) (plandomain.Plan, error) {
	sku := normalizeSKU(req.SKU)
	if sku == "" {
		return plandomain.Plan{}, plandomain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return plandomain.Plan{}, plandomain.ErrInvalidName
	}
	if req.PriceMinorUnits < 0 {
		return plandomain.Plan{}, plandomain.ErrInvalidPrice
	}
	if req.ValidityMonths < minValidityMonths || req.ValidityMonths > maxValidityMonths {
		return plandomain.Plan{}, plandomain.ErrInvalidValidity
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	existing, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if existing != nil {
		return plandomain.Plan{}, plandomain.ErrPlanExists
	}

	now := s.clock.Now()
	plan := plandomain.Plan{
		ID:              s.genID.Generate(),
		SKU:             sku,
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		PriceMinorUnits: req.PriceMinorUnits,
		Currency:        currency,
		ValidityMonths:  req.ValidityMonths,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return plandomain.Plan{}, plandomain.ErrPlanExists
		}
		return plandomain.Plan{}, err
	}

	s.log.Info("plan created", zap.String("sku", plan.SKU))

	return plan, nil
}

// Update implements domain.Service.
func (s *Service) Update(ctx context.Context, req plandomain.UpdatePlanRequest) (plandomain.Plan, error) {
	sku := normalizeSKU(req.SKU)
	if sku == "" {
		return plandomain.Plan{}, plandomain.ErrInvalidSKU
	}

	plan, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return plandomain.Plan{}, plandomain.ErrInvalidName
		}
		plan.Name = name
	}
	if req.Description != nil {
		plan.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceMinorUnits != nil {
		if *req.PriceMinorUnits < 0 {
			return plandomain.Plan{}, plandomain.ErrInvalidPrice
		}
		plan.PriceMinorUnits = *req.PriceMinorUnits
	}
	if req.Currency != nil {
		if currency := strings.ToUpper(strings.TrimSpace(*req.Currency)); currency != "" {
			plan.Currency = currency
		}
	}
	if req.ValidityMonths != nil {
		if *req.ValidityMonths < minValidityMonths || *req.ValidityMonths > maxValidityMonths {
			return plandomain.Plan{}, plandomain.ErrInvalidValidity
		}
		plan.ValidityMonths = *req.ValidityMonths
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	plan.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		return plandomain.Plan{}, err
	}

	return *plan, nil
}

// GetBySKU implements domain.Service.
func (s *Service) GetBySKU(ctx context.Context, sku string) (plandomain.Plan, error) {
	plan, err := s.repo.FindBySKU(ctx, s.db, normalizeSKU(sku))
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}
	return *plan, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context, req plandomain.ListPlanRequest) ([]plandomain.Plan, error) {
	return s.repo.List(ctx, s.db, req.IncludeInactive)
}

// Delete implements domain.Service.
func (s *Service) Delete(ctx context.Context, sku string) error {
	normalized := normalizeSKU(sku)
	if normalized == "" {
		return plandomain.ErrInvalidSKU
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := s.repo.FindBySKU(ctx, tx, normalized)
		if err != nil {
			return err
		}
		if plan == nil {
			return plandomain.ErrPlanNotFound
		}

		referenced, err := s.repo.CountSubscriptionsBySKU(ctx, tx, normalized)
		if err != nil {
			return err
		}
		if referenced > 0 {
			// Plans with subscription history are deactivated, never
			// removed, so past subscriptions keep resolving their SKU.
			plan.IsActive = false
			plan.UpdatedAt = s.clock.Now()
			return s.repo.Update(ctx, tx, plan)
		}

		return s.repo.Delete(ctx, tx, normalized)
	})
}

func normalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}
