package providers

import (
	"github.com/washworks/fleetwash/internal/providers/invoice"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	invoice.Module,
)
