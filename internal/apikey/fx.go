package apikey

import (
	apikeydomain "github.com/smallbiznis/entitle/internal/apikey/domain"
	"github.com/smallbiznis/entitle/internal/apikey/repository"
	"github.com/smallbiznis/entitle/internal/apikey/service"
	"github.com/smallbiznis/entitle/internal/identity"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc apikeydomain.Service) identity.APIKeyLookup { return svc }),
)
