package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const defaultNetworkName = "Main"

// EnsureNetwork seeds a default network so a fresh install is usable
// without an admin console.
func EnsureNetwork(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var count int64
	if err := db.WithContext(ctx).Table("networks").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return insertNetwork(ctx, db, int64(node.Generate()))
}

// EnsureNetworkWithID seeds the network under a fixed id, used when the
// deployment pins DEFAULT_NETWORK.
func EnsureNetworkWithID(db *gorm.DB, networkID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if networkID == 0 {
		return errors.New("seed network id is required")
	}

	ctx := context.Background()
	var count int64
	err := db.WithContext(ctx).
		Table("networks").
		Where("id = ?", networkID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return insertNetwork(ctx, db, networkID)
}

func insertNetwork(ctx context.Context, db *gorm.DB, networkID int64) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`INSERT INTO networks (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		networkID, defaultNetworkName, now, now,
	).Error
}
