package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/entitle/internal/clock"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
	customerrepository "github.com/smallbiznis/entitle/internal/customer/repository"
	"github.com/smallbiznis/entitle/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) customerdomain.Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&customerdomain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParam{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  customerrepository.Provide(),
	})
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:  "  Acme Corp  ",
		Email: " Billing@Acme.COM ",
		Phone: "+1-555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", customer.Name)
	assert.Equal(t, "billing@acme.com", customer.Email)
	assert.True(t, customer.IsActive)

	_, err = svc.Create(ctx, customerdomain.CreateCustomerRequest{Name: "Other", Email: "billing@acme.com"})
	assert.ErrorIs(t, err, customerdomain.ErrCustomerExists)

	_, err = svc.Create(ctx, customerdomain.CreateCustomerRequest{Name: "", Email: "x@y.com"})
	assert.ErrorIs(t, err, customerdomain.ErrInvalidName)

	_, err = svc.Create(ctx, customerdomain.CreateCustomerRequest{Name: "No Email", Email: "not-an-email"})
	assert.ErrorIs(t, err, customerdomain.ErrInvalidEmail)
}

func TestUpdateAndDeactivate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, customerdomain.CreateCustomerRequest{Name: "Acme", Email: "acme@example.com"})
	require.NoError(t, err)

	name := "Acme Industries"
	updated, err := svc.Update(ctx, customerdomain.UpdateCustomerRequest{ID: customer.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Industries", updated.Name)
	assert.Equal(t, customer.Email, updated.Email)

	require.NoError(t, svc.Deactivate(ctx, customer.ID))

	got, err := svc.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, svc.Deactivate(ctx, snowflake.ID(42)), customerdomain.ErrCustomerNotFound)
}

func TestListSearchesAndPaginates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	names := []string{"Acme Corp", "Acme Labs", "Globex"}
	for i, name := range names {
		_, err := svc.Create(ctx, customerdomain.CreateCustomerRequest{
			Name:  name,
			Email: name + string(rune('a'+i)) + "@example.com",
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, customerdomain.ListCustomerRequest{Search: "acme"})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)
	assert.Equal(t, int64(2), resp.PageInfo.Total)

	paged, err := svc.List(ctx, customerdomain.ListCustomerRequest{
		Pagination: pagination.Pagination{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Len(t, paged.Customers, 1)
	assert.Equal(t, int64(3), paged.PageInfo.Total)
	assert.Equal(t, 2, paged.PageInfo.Page)
}
