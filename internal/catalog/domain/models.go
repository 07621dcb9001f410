package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// VehicleType categorizes the unit being washed for pricing purposes.
type VehicleType string

const (
	VehicleTypeTractor VehicleType = "TRACTOR"
	VehicleTypeTrailer VehicleType = "TRAILER"
	VehicleTypeTruck   VehicleType = "TRUCK"
	VehicleTypeVan     VehicleType = "VAN"
	VehicleTypeBus     VehicleType = "BUS"
)

func ValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleTypeTractor, VehicleTypeTrailer, VehicleTypeTruck, VehicleTypeVan, VehicleTypeBus:
		return true
	default:
		return false
	}
}

// LocationPrice is the base unit price of one service package for one
// vehicle category at one location.
type LocationPrice struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	NetworkID        snowflake.ID `json:"network_id" gorm:"column:network_id;not null;index"`
	LocationID       snowflake.ID `json:"location_id" gorm:"column:location_id;not null;index"`
	ServicePackageID snowflake.ID `json:"service_package_id" gorm:"column:service_package_id;not null;index"`
	VehicleType      VehicleType  `json:"vehicle_type" gorm:"type:text;not null"`
	UnitPriceCents   int64        `json:"unit_price_cents" gorm:"not null"`
	Currency         string       `json:"currency" gorm:"type:text;not null"`
	Active           bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LocationPrice) TableName() string { return "location_prices" }
