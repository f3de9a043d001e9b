package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidSubscription  = errors.New("invalid_subscription")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidTransition    = errors.New("invalid_transition")
	ErrActiveConflict       = errors.New("active_subscription_conflict")
)

// TransitionError reports a rejected lifecycle edge with both endpoints so
// clients can render a precise message. errors.Is matches
// ErrInvalidTransition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid_transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func NewTransitionError(from, to Status) error {
	return &TransitionError{From: from, To: to}
}
