package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	pkgdb "github.com/washworks/fleetwash/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, price *catalogdomain.LocationPrice) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE location_prices
		 SET unit_price_cents = ?, currency = ?, active = ?, updated_at = ?
		 WHERE network_id = ? AND location_id = ? AND service_package_id = ? AND vehicle_type = ?`,
		price.UnitPriceCents,
		price.Currency,
		price.Active,
		price.UpdatedAt,
		price.NetworkID,
		price.LocationID,
		price.ServicePackageID,
		price.VehicleType,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	err := db.WithContext(ctx).Exec(
		`INSERT INTO location_prices (id, network_id, location_id, service_package_id, vehicle_type,
			unit_price_cents, currency, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		price.ID,
		price.NetworkID,
		price.LocationID,
		price.ServicePackageID,
		price.VehicleType,
		price.UnitPriceCents,
		price.Currency,
		price.Active,
		price.CreatedAt,
		price.UpdatedAt,
	).Error
	if err != nil && pkgdb.IsDuplicateKeyErr(err) {
		// Lost the insert race against a concurrent upsert; the row
		// exists now, so the update path applies.
		return db.WithContext(ctx).Exec(
			`UPDATE location_prices
			 SET unit_price_cents = ?, currency = ?, active = ?, updated_at = ?
			 WHERE network_id = ? AND location_id = ? AND service_package_id = ? AND vehicle_type = ?`,
			price.UnitPriceCents,
			price.Currency,
			price.Active,
			price.UpdatedAt,
			price.NetworkID,
			price.LocationID,
			price.ServicePackageID,
			price.VehicleType,
		).Error
	}
	return err
}

func (r *repo) FindPrice(ctx context.Context, db *gorm.DB, networkID, locationID, servicePackageID snowflake.ID, vehicleType catalogdomain.VehicleType) (*catalogdomain.LocationPrice, error) {
	var price catalogdomain.LocationPrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, network_id, location_id, service_package_id, vehicle_type,
			unit_price_cents, currency, active, created_at, updated_at
		 FROM location_prices
		 WHERE network_id = ? AND location_id = ? AND service_package_id = ? AND vehicle_type = ? AND active = ?`,
		networkID,
		locationID,
		servicePackageID,
		vehicleType,
		true,
	).Scan(&price).Error
	if err != nil {
		return nil, err
	}
	if price.ID == 0 {
		return nil, nil
	}
	return &price, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, networkID, locationID snowflake.ID) ([]catalogdomain.LocationPrice, error) {
	var prices []catalogdomain.LocationPrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, network_id, location_id, service_package_id, vehicle_type,
			unit_price_cents, currency, active, created_at, updated_at
		 FROM location_prices
		 WHERE network_id = ? AND location_id = ?
		 ORDER BY service_package_id ASC, vehicle_type ASC`,
		networkID,
		locationID,
	).Scan(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
