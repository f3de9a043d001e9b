package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatusDerivesExpiry(t *testing.T) {
	activatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := activatedAt.AddDate(0, 1, 0)
	sub := &Subscription{
		Status:      StatusActive,
		ActivatedAt: &activatedAt,
		ExpiresAt:   &expiresAt,
	}

	assert.Equal(t, StatusActive, EffectiveStatus(sub, expiresAt.Add(-time.Second)))
	assert.Equal(t, StatusExpired, EffectiveStatus(sub, expiresAt))
	assert.Equal(t, StatusExpired, EffectiveStatus(sub, expiresAt.Add(24*time.Hour)))
}

func TestEffectiveStatusIsDeterministic(t *testing.T) {
	activatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := activatedAt.AddDate(0, 2, 0)
	sub := &Subscription{
		Status:      StatusActive,
		ActivatedAt: &activatedAt,
		ExpiresAt:   &expiresAt,
	}

	at := expiresAt.Add(time.Hour)
	first := EffectiveStatus(sub, at)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EffectiveStatus(sub, at))
	}
}

func TestEffectiveStatusLeavesNonActiveAlone(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, status := range []Status{StatusRequested, StatusApproved, StatusInactive, StatusExpired} {
		sub := &Subscription{Status: status}
		assert.Equal(t, status, EffectiveStatus(sub, now), "status=%s", status)
	}
}

func TestCanTransitionTable(t *testing.T) {
	all := []Status{StatusRequested, StatusApproved, StatusActive, StatusInactive, StatusExpired}

	allowed := map[[2]Status]bool{
		{StatusRequested, StatusApproved}: true,
		{StatusRequested, StatusActive}:   true,
		{StatusRequested, StatusInactive}: true,
		{StatusApproved, StatusActive}:    true,
		{StatusApproved, StatusInactive}:  true,
		{StatusActive, StatusInactive}:    true,
		{StatusActive, StatusExpired}:     true,
	}

	for _, from := range all {
		for _, to := range all {
			expected := allowed[[2]Status{from, to}]
			assert.Equal(t, expected, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoOutboundEdges(t *testing.T) {
	all := []Status{StatusRequested, StatusApproved, StatusActive, StatusInactive, StatusExpired}
	for _, to := range all {
		assert.False(t, CanTransition(StatusInactive, to))
		assert.False(t, CanTransition(StatusExpired, to))
	}
}

func TestTransitionErrorMatchesSentinel(t *testing.T) {
	err := NewTransitionError(StatusExpired, StatusActive)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var tErr *TransitionError
	assert.True(t, errors.As(err, &tErr))
	assert.Equal(t, StatusExpired, tErr.From)
	assert.Equal(t, StatusActive, tErr.To)
	assert.Equal(t, "invalid_transition: expired -> active", err.Error())
}
