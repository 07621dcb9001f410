package billingline

import (
	"github.com/washworks/fleetwash/internal/billingline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingline.service",
	fx.Provide(service.New),
)
