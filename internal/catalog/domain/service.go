package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	GetPrice(ctx context.Context, req PriceLookup) (*PriceResponse, error)
	Upsert(ctx context.Context, req UpsertRequest) (*PriceResponse, error)
	List(ctx context.Context, locationID string) ([]PriceResponse, error)
}

// PriceLookup identifies one priced component at one location.
type PriceLookup struct {
	LocationID       string      `json:"location_id"`
	ServicePackageID string      `json:"service_package_id"`
	VehicleType      VehicleType `json:"vehicle_type"`
}

type UpsertRequest struct {
	LocationID       string      `json:"location_id"`
	ServicePackageID string      `json:"service_package_id"`
	VehicleType      VehicleType `json:"vehicle_type"`
	UnitPriceCents   int64       `json:"unit_price_cents"`
	Currency         string      `json:"currency"`
}

type PriceResponse struct {
	ID               string      `json:"id"`
	NetworkID        string      `json:"network_id"`
	LocationID       string      `json:"location_id"`
	ServicePackageID string      `json:"service_package_id"`
	VehicleType      VehicleType `json:"vehicle_type"`
	UnitPriceCents   int64       `json:"unit_price_cents"`
	Currency         string      `json:"currency"`
	Active           bool        `json:"active"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

var (
	ErrInvalidNetwork        = errors.New("invalid_network")
	ErrInvalidLocation       = errors.New("invalid_location")
	ErrInvalidServicePackage = errors.New("invalid_service_package")
	ErrInvalidVehicleType    = errors.New("invalid_vehicle_type")
	ErrInvalidUnitPrice      = errors.New("invalid_unit_price")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrPriceNotAvailable     = errors.New("price_not_available")
)
