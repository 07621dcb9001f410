package partner

import (
	"github.com/washworks/fleetwash/internal/partner/repository"
	"github.com/washworks/fleetwash/internal/partner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("partner.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
