package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/entitle/internal/account/domain"
	"github.com/smallbiznis/entitle/internal/account/password"
	"github.com/smallbiznis/entitle/internal/clock"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
	"github.com/smallbiznis/entitle/internal/identity"
	"github.com/smallbiznis/entitle/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dummyHash keeps verification cost flat when the account lookup misses.
var dummyHash, _ = password.Hash("entitle-dummy")

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  accountdomain.Repository
	codec *identity.TokenCodec

	customersvc customerdomain.Service
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  accountdomain.Repository
	Codec *identity.TokenCodec

	Customersvc customerdomain.Service
}

func NewService(p ServiceParam) accountdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("account.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		codec: p.Codec,

		customersvc: p.Customersvc,
	}
}

// Login implements domain.Service.
func (s *Service) Login(ctx context.Context, req accountdomain.LoginRequest) (accountdomain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return accountdomain.LoginResult{}, err
	}
	if account == nil || account.Role != req.Role {
		// Burn a verification anyway so a missing account costs the same
		// as a wrong password.
		password.Verify(req.Password, dummyHash)
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidCredentials
	}

	if !password.Verify(req.Password, account.PasswordHash) {
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidCredentials
	}
	if !account.IsActive {
		return accountdomain.LoginResult{}, accountdomain.ErrAccountDisabled
	}

	return s.issue(account)
}

// Signup implements domain.Service.
func (s *Service) Signup(ctx context.Context, req accountdomain.SignupRequest) (accountdomain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidPassword
	}
	if strings.TrimSpace(req.Name) == "" {
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidName
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return accountdomain.LoginResult{}, err
	}
	if existing != nil {
		return accountdomain.LoginResult{}, accountdomain.ErrAccountExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return accountdomain.LoginResult{}, err
	}

	now := s.clock.Now()
	account := accountdomain.Account{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		Role:         accountdomain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customersvc.CreateTx(ctx, tx, customerdomain.CreateCustomerRequest{
			Name:  req.Name,
			Email: email,
			Phone: req.Phone,
		})
		if err != nil {
			return err
		}

		account.CustomerID = customer.ID
		return s.repo.Insert(ctx, tx, &account)
	}); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return accountdomain.LoginResult{}, accountdomain.ErrAccountExists
		}
		return accountdomain.LoginResult{}, err
	}

	s.log.Info("customer signed up",
		zap.String("account_id", account.ID.String()),
		zap.String("customer_id", account.CustomerID.String()),
	)

	return s.issue(&account)
}

// CreateAccount implements domain.Service.
func (s *Service) CreateAccount(ctx context.Context, req accountdomain.CreateAccountRequest) (accountdomain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return accountdomain.Account{}, accountdomain.ErrInvalidEmail
	}
	if req.Password == "" {
		return accountdomain.Account{}, accountdomain.ErrInvalidPassword
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return accountdomain.Account{}, err
	}

	now := s.clock.Now()
	account := accountdomain.Account{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		CustomerID:   req.CustomerID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return accountdomain.Account{}, accountdomain.ErrAccountExists
		}
		return accountdomain.Account{}, err
	}

	return account, nil
}

func (s *Service) issue(account *accountdomain.Account) (accountdomain.LoginResult, error) {
	var principal identity.Principal
	switch account.Role {
	case accountdomain.RoleAdmin:
		principal = identity.Admin(account.ID)
	case accountdomain.RoleCustomer:
		principal = identity.Customer(account.ID, account.CustomerID)
	default:
		return accountdomain.LoginResult{}, accountdomain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Issue(principal)
	if err != nil {
		return accountdomain.LoginResult{}, err
	}

	return accountdomain.LoginResult{
		Principal: principal,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
