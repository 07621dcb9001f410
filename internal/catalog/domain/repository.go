package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, price *LocationPrice) error
	FindPrice(ctx context.Context, db *gorm.DB, networkID, locationID, servicePackageID snowflake.ID, vehicleType VehicleType) (*LocationPrice, error)
	List(ctx context.Context, db *gorm.DB, networkID, locationID snowflake.ID) ([]LocationPrice, error)
}
