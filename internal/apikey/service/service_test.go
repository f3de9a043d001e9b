package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	apikeydomain "github.com/smallbiznis/entitle/internal/apikey/domain"
	apikeyrepository "github.com/smallbiznis/entitle/internal/apikey/repository"
	"github.com/smallbiznis/entitle/internal/clock"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	genID *snowflake.Node
	svc   apikeydomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&apikeydomain.APIKey{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:      gdb,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Runtime: config.NewStaticRuntimeConfigHolder(config.DefaultRuntimeConfig()),
		Repo:    apikeyrepository.Provide(),
	})

	return &fixture{db: gdb, clock: clk, genID: node, svc: svc}
}

func TestIssueAndResolveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := f.genID.Generate()

	secret, err := f.svc.IssueForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret.APIKey, "sk-sdk-"))

	resolved, err := f.svc.ResolveKey(ctx, secret.APIKey)
	require.NoError(t, err)
	assert.Equal(t, customerID, resolved)

	var row struct {
		KeyHash    string
		LastUsedAt *time.Time
	}
	err = f.db.Raw(`SELECT key_hash, last_used_at FROM api_keys WHERE customer_id = ?`, customerID).Scan(&row).Error
	require.NoError(t, err)
	require.NotNil(t, row.LastUsedAt)
	assert.Equal(t, f.clock.Now(), row.LastUsedAt.UTC())

	assert.Equal(t, apikeydomain.Fingerprint(secret.APIKey), row.KeyHash)
	assert.True(t, strings.HasPrefix(row.KeyHash, "sha256:"))
	assert.NotContains(t, row.KeyHash, secret.APIKey)
}

func TestIssueRevokesPreviousKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := f.genID.Generate()

	first, err := f.svc.IssueForCustomer(ctx, customerID)
	require.NoError(t, err)

	second, err := f.svc.IssueForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.NotEqual(t, first.APIKey, second.APIKey)

	_, err = f.svc.ResolveKey(ctx, first.APIKey)
	assert.ErrorIs(t, err, apikeydomain.ErrNotFound)

	resolved, err := f.svc.ResolveKey(ctx, second.APIKey)
	require.NoError(t, err)
	assert.Equal(t, customerID, resolved)
}

func TestRevokeDisablesResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := f.genID.Generate()

	secret, err := f.svc.IssueForCustomer(ctx, customerID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(ctx, customerID))

	_, err = f.svc.ResolveKey(ctx, secret.APIKey)
	assert.ErrorIs(t, err, apikeydomain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Revoke(ctx, 0), apikeydomain.ErrInvalidCustomer)
}

func TestResolveRejectsMalformedKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"", "   ", "wrong-prefix-abc", "sk-sdk-unknown"} {
		_, err := f.svc.ResolveKey(ctx, raw)
		assert.ErrorIs(t, err, apikeydomain.ErrNotFound, "raw=%q", raw)
	}
}
