package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/smallbiznis/entitle/internal/account/domain"
	accountrepository "github.com/smallbiznis/entitle/internal/account/repository"
	"github.com/smallbiznis/entitle/internal/clock"
	"github.com/smallbiznis/entitle/internal/config"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
	customerrepository "github.com/smallbiznis/entitle/internal/customer/repository"
	customerservice "github.com/smallbiznis/entitle/internal/customer/service"
	"github.com/smallbiznis/entitle/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	codec *identity.TokenCodec
	svc   accountdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&accountdomain.Account{}, &customerdomain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	codec, err := identity.NewTokenCodec("test-secret", config.NewStaticRuntimeConfigHolder(config.DefaultRuntimeConfig()), clk)
	require.NoError(t, err)

	customersvc := customerservice.NewService(customerservice.ServiceParam{
		DB:    gdb,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  customerrepository.Provide(),
	})

	svc := NewService(ServiceParam{
		DB:          gdb,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        accountrepository.Provide(),
		Codec:       codec,
		Customersvc: customersvc,
	})

	return &fixture{db: gdb, clock: clk, codec: codec, svc: svc}
}

func TestSignupCreatesAccountAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Signup(ctx, accountdomain.SignupRequest{
		Name:     "Acme Corp",
		Email:    "Owner@Acme.COM",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, identity.KindCustomer, result.Principal.Kind)
	assert.NotZero(t, result.Principal.CustomerID)

	principal, err := f.codec.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Principal, principal)

	var count int64
	require.NoError(t, f.db.Raw(`SELECT COUNT(1) FROM customers WHERE email = ?`, "owner@acme.com").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, accountdomain.SignupRequest{Name: "X", Email: "bad", Password: "long enough"})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidEmail)

	_, err = f.svc.Signup(ctx, accountdomain.SignupRequest{Name: "X", Email: "x@y.com", Password: "short"})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidPassword)

	_, err = f.svc.Signup(ctx, accountdomain.SignupRequest{Name: " ", Email: "x@y.com", Password: "long enough"})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidName)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := accountdomain.SignupRequest{Name: "Acme", Email: "acme@example.com", Password: "correct horse"}
	_, err := f.svc.Signup(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, req)
	assert.ErrorIs(t, err, accountdomain.ErrAccountExists)

	var count int64
	require.NoError(t, f.db.Raw(`SELECT COUNT(1) FROM accounts`).Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoginVerifiesPasswordAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, accountdomain.SignupRequest{Name: "Acme", Email: "acme@example.com", Password: "correct horse"})
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "ACME@example.com",
		Password: "correct horse",
		Role:     accountdomain.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, identity.KindCustomer, result.Principal.Kind)

	_, err = f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "acme@example.com",
		Password: "wrong password",
		Role:     accountdomain.RoleCustomer,
	})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidCredentials)

	// A customer credential never opens the admin surface.
	_, err = f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "acme@example.com",
		Password: "correct horse",
		Role:     accountdomain.RoleAdmin,
	})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct horse",
		Role:     accountdomain.RoleCustomer,
	})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidCredentials)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, accountdomain.SignupRequest{Name: "Acme", Email: "acme@example.com", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, f.db.Exec(`UPDATE accounts SET is_active = FALSE WHERE email = ?`, "acme@example.com").Error)

	_, err = f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "acme@example.com",
		Password: "correct horse",
		Role:     accountdomain.RoleCustomer,
	})
	assert.ErrorIs(t, err, accountdomain.ErrAccountDisabled)
}

func TestCreateAccountProvisionsConsoleLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	customerID := node.Generate()

	account, err := f.svc.CreateAccount(ctx, accountdomain.CreateAccountRequest{
		Email:      "ops@acme.example.com",
		Password:   "provisioned",
		Role:       accountdomain.RoleCustomer,
		CustomerID: customerID,
	})
	require.NoError(t, err)
	assert.Equal(t, customerID, account.CustomerID)

	result, err := f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "ops@acme.example.com",
		Password: "provisioned",
		Role:     accountdomain.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, customerID, result.Principal.CustomerID)
}
