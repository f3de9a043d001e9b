// Package clock abstracts time so lifecycle decisions and tests share one
// time source.
package clock

import (
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func provideSystem() Clock {
	return SystemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(provideSystem),
)
