package identity

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/clock"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string, clk clock.Clock) *TokenCodec {
	t.Helper()

	codec, err := NewTokenCodec(secret, config.NewStaticRuntimeConfigHolder(config.DefaultRuntimeConfig()), clk)
	require.NoError(t, err)
	return codec
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	codec := newTestCodec(t, "test-secret", clk)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	accountID := node.Generate()
	customerID := node.Generate()

	token, expiresAt, err := codec.Issue(Customer(accountID, customerID))
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(60*time.Minute), expiresAt)

	principal, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, KindCustomer, principal.Kind)
	assert.Equal(t, accountID, principal.AccountID)
	assert.Equal(t, customerID, principal.CustomerID)

	adminToken, _, err := codec.Issue(Admin(accountID))
	require.NoError(t, err)

	admin, err := codec.Verify(adminToken)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Zero(t, admin.CustomerID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	codec := newTestCodec(t, "test-secret", clk)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, _, err := codec.Issue(Admin(node.Generate()))
	require.NoError(t, err)

	clk.Advance(61 * time.Minute)

	principal, err := codec.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, KindAnonymous, principal.Kind)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := newTestCodec(t, "secret-one", clk)
	verifier := newTestCodec(t, "secret-two", clk)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, _, err := issuer.Issue(Admin(node.Generate()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	codec := newTestCodec(t, "test-secret", clk)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, ErrUnauthenticated, "raw=%q", raw)
	}
}

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	_, err := NewTokenCodec("  ", config.NewStaticRuntimeConfigHolder(config.DefaultRuntimeConfig()), clk)
	assert.ErrorIs(t, err, ErrMissingSigningSecret)
}

func TestIssueRejectsAnonymous(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	codec := newTestCodec(t, "test-secret", clk)

	_, _, err := codec.Issue(Anonymous())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
