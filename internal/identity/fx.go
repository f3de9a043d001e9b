package identity

import (
	"github.com/smallbiznis/entitle/internal/clock"
	"github.com/smallbiznis/entitle/internal/config"
	"go.uber.org/fx"
)

func provideCodec(cfg config.Config, runtime *config.RuntimeConfigHolder, clk clock.Clock) (*TokenCodec, error) {
	return NewTokenCodec(cfg.AuthJWTSecret, runtime, clk)
}

var Module = fx.Module("identity",
	fx.Provide(
		provideCodec,
		NewResolver,
	),
)
