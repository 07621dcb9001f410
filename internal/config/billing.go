package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds the invoicing defaults handed to the external invoice
// provider alongside composed line items.
type BillingConfig struct {
	Currency       string `mapstructure:"currency"`
	PaymentDueDays int    `mapstructure:"paymentDueDays"`
	LockBatchSize  int    `mapstructure:"lockBatchSize"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		Currency:       "EUR",
		PaymentDueDays: 14,
		LockBatchSize:  100,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fleetwash/config") // Volume-mounted config
	v.AddConfigPath("/etc/fleetwash")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("FLEETWASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.currency", defaults.Currency)
		v.SetDefault("billing.paymentDueDays", defaults.PaymentDueDays)
		v.SetDefault("billing.lockBatchSize", defaults.LockBatchSize)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("billing.currency cannot be empty")
	}
	if cfg.PaymentDueDays <= 0 {
		return errors.New("billing.paymentDueDays must be positive")
	}
	if cfg.LockBatchSize <= 0 {
		return errors.New("billing.lockBatchSize must be positive")
	}
	return nil
}
