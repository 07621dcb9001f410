package washsession

import (
	"github.com/washworks/fleetwash/internal/washsession/repository"
	"github.com/washworks/fleetwash/internal/washsession/service"
	"go.uber.org/fx"
)

var Module = fx.Module("washsession.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
