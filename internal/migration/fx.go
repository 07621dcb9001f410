package migration

import (
	"github.com/washworks/fleetwash/internal/config"
	"github.com/washworks/fleetwash/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "sqlite" {
			// sqlite is only used by tests, which create their own schema.
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}

		if cfg.DefaultNetworkID != 0 {
			return seed.EnsureNetworkWithID(conn, cfg.DefaultNetworkID)
		}
		return seed.EnsureNetwork(conn)
	}),
)
