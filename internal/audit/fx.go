package audit

import (
	"github.com/washworks/fleetwash/internal/audit/repository"
	"github.com/washworks/fleetwash/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
