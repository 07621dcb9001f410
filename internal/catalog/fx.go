package catalog

import (
	"github.com/washworks/fleetwash/internal/catalog/repository"
	"github.com/washworks/fleetwash/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
