package usage

import (
	"github.com/washworks/fleetwash/internal/usage/repository"
	"github.com/washworks/fleetwash/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
