package invoice

import (
	"github.com/washworks/fleetwash/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.invoice",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.InvoiceWebhookURL == "" {
		return Unconfigured{}
	}
	return NewWebhook(cfg.InvoiceWebhookURL, cfg.InvoiceWebhookToken)
}
