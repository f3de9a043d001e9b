package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/entitle/internal/clock"
	plandomain "github.com/smallbiznis/entitle/internal/plan/domain"
	planrepository "github.com/smallbiznis/entitle/internal/plan/repository"
	subscriptiondomain "github.com/smallbiznis/entitle/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	genID *snowflake.Node
	svc   plandomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&plandomain.Plan{}, &subscriptiondomain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  planrepository.Provide(),
	})

	return &fixture{db: gdb, clock: clk, genID: node, svc: svc}
}

func validCreate() plandomain.CreatePlanRequest {
	return plandomain.CreatePlanRequest{
		SKU:             "basic-1m",
		Name:            "Basic Monthly",
		Description:     "One month of access",
		PriceMinorUnits: 999,
		Currency:        "usd",
		ValidityMonths:  1,
	}
}

func TestCreateNormalizesAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validCreate()
	req.SKU = "  Basic-1M  "
	req.Currency = ""

	plan, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "basic-1m", plan.SKU)
	assert.Equal(t, "USD", plan.Currency)
	assert.True(t, plan.IsActive)
	assert.Equal(t, f.clock.Now(), plan.CreatedAt)

	got, err := f.svc.GetBySKU(ctx, "BASIC-1M")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*plandomain.CreatePlanRequest)
		wantErr error
	}{
		{"empty sku", func(r *plandomain.CreatePlanRequest) { r.SKU = "   " }, plandomain.ErrInvalidSKU},
		{"empty name", func(r *plandomain.CreatePlanRequest) { r.Name = "" }, plandomain.ErrInvalidName},
		{"negative price", func(r *plandomain.CreatePlanRequest) { r.PriceMinorUnits = -1 }, plandomain.ErrInvalidPrice},
		{"zero validity", func(r *plandomain.CreatePlanRequest) { r.ValidityMonths = 0 }, plandomain.ErrInvalidValidity},
		{"validity above cap", func(r *plandomain.CreatePlanRequest) { r.ValidityMonths = 13 }, plandomain.ErrInvalidValidity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate()
			tc.mutate(&req)
			_, err := f.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, validCreate())
	assert.ErrorIs(t, err, plandomain.ErrPlanExists)
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	name := "Basic (legacy)"
	inactive := false
	updated, err := f.svc.Update(ctx, plandomain.UpdatePlanRequest{
		SKU:      created.SKU,
		Name:     &name,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Basic (legacy)", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.PriceMinorUnits, updated.PriceMinorUnits)
	assert.Equal(t, created.ValidityMonths, updated.ValidityMonths)

	badValidity := 24
	_, err = f.svc.Update(ctx, plandomain.UpdatePlanRequest{SKU: created.SKU, ValidityMonths: &badValidity})
	assert.ErrorIs(t, err, plandomain.ErrInvalidValidity)

	_, err = f.svc.Update(ctx, plandomain.UpdatePlanRequest{SKU: "missing", Name: &name})
	assert.ErrorIs(t, err, plandomain.ErrPlanNotFound)
}

func TestListFiltersInactiveByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	retired := validCreate()
	retired.SKU = "retired-1m"
	_, err = f.svc.Create(ctx, retired)
	require.NoError(t, err)
	off := false
	_, err = f.svc.Update(ctx, plandomain.UpdatePlanRequest{SKU: retired.SKU, IsActive: &off})
	require.NoError(t, err)

	plans, err := f.svc.List(ctx, plandomain.ListPlanRequest{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, active.SKU, plans[0].SKU)

	all, err := f.svc.List(ctx, plandomain.ListPlanRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteRemovesUnreferencedPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.SKU))

	_, err = f.svc.GetBySKU(ctx, created.SKU)
	assert.ErrorIs(t, err, plandomain.ErrPlanNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, created.SKU), plandomain.ErrPlanNotFound)
}

func TestDeleteDeactivatesReferencedPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	now := f.clock.Now()
	sub := subscriptiondomain.Subscription{
		ID:          f.genID.Generate(),
		CustomerID:  f.genID.Generate(),
		PlanSKU:     created.SKU,
		Status:      subscriptiondomain.StatusRequested,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.db.Create(&sub).Error)

	require.NoError(t, f.svc.Delete(ctx, created.SKU))

	got, err := f.svc.GetBySKU(ctx, created.SKU)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
