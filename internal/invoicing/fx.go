package invoicing

import "go.uber.org/fx"

var Module = fx.Module("invoicing.service",
	fx.Provide(New),
)
