package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/clock"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
	"github.com/smallbiznis/entitle/pkg/db"
	"github.com/smallbiznis/entitle/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  customerdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  customerdomain.Repository
}

func NewService(p ServiceParam) customerdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("customer.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	return s.CreateTx(ctx, s.db, req)
}

// CreateTx implements domain.Service.
func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return customerdomain.Customer{}, customerdomain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, tx, email)
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if existing != nil {
		return customerdomain.Customer{}, customerdomain.ErrCustomerExists
	}

	now := s.clock.Now()
	customer := customerdomain.Customer{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, tx, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return customerdomain.Customer{}, customerdomain.ErrCustomerExists
		}
		return customerdomain.Customer{}, err
	}

	s.log.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
	)

	return customer, nil
}

// Get implements domain.Service.
func (s *Service) Get(ctx context.Context, id snowflake.ID) (customerdomain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if customer == nil {
		return customerdomain.Customer{}, customerdomain.ErrCustomerNotFound
	}
	return *customer, nil
}

// Update implements domain.Service.
func (s *Service) Update(ctx context.Context, req customerdomain.UpdateCustomerRequest) (customerdomain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if customer == nil {
		return customerdomain.Customer{}, customerdomain.ErrCustomerNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return customerdomain.Customer{}, customerdomain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	customer.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return customerdomain.Customer{}, err
	}

	return *customer, nil
}

// Deactivate implements domain.Service.
func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) error {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return customerdomain.ErrCustomerNotFound
	}

	customer.IsActive = false
	customer.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, s.db, customer)
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context, req customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	page := req.Pagination.Normalize()

	customers, total, err := s.repo.List(ctx, s.db, strings.TrimSpace(req.Search), page)
	if err != nil {
		return customerdomain.ListCustomerResponse{}, err
	}

	return customerdomain.ListCustomerResponse{
		Customers: customers,
		PageInfo: pagination.PageInfo{
			Page:     page.Page,
			PageSize: page.PageSize,
			Total:    total,
		},
	}, nil
}
