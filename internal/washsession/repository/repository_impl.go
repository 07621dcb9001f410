package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sessiondomain.Repository {
	return &repo{}
}

const sessionColumns = `id, network_id, location_id, service_package_id, partner_id, driver_id,
	track, entry_mode, status, version, usage_count, discount_percent, total_cents, currency,
	rejection_reason, created_at, authorized_at, started_at, completed_at, locked_at, rejected_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *sessiondomain.WashSession, items []sessiondomain.WashSessionItem) error {
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO wash_sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.NetworkID,
		session.LocationID,
		session.ServicePackageID,
		session.PartnerID,
		session.DriverID,
		session.Track,
		session.EntryMode,
		session.Status,
		session.Version,
		session.UsageCount,
		session.DiscountPercent,
		session.TotalCents,
		session.Currency,
		session.RejectionReason,
		session.CreatedAt,
		session.AuthorizedAt,
		session.StartedAt,
		session.CompletedAt,
		session.LockedAt,
		session.RejectedAt,
		session.UpdatedAt,
	).Error; err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO wash_session_items (id, network_id, session_id, position, vehicle_type, plate_number, unit_price_cents, line_total_cents, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.NetworkID,
			item.SessionID,
			item.Position,
			item.VehicleType,
			item.PlateNumber,
			item.UnitPriceCents,
			item.LineTotalCents,
			item.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, networkID, id snowflake.ID) (*sessiondomain.WashSession, error) {
	var session sessiondomain.WashSession
	err := db.WithContext(ctx).Raw(
		`SELECT `+sessionColumns+` FROM wash_sessions WHERE network_id = ? AND id = ?`,
		networkID,
		id,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, networkID, sessionID snowflake.ID) ([]sessiondomain.WashSessionItem, error) {
	var items []sessiondomain.WashSessionItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, network_id, session_id, position, vehicle_type, plate_number, unit_price_cents, line_total_cents, created_at
		 FROM wash_session_items
		 WHERE network_id = ? AND session_id = ?
		 ORDER BY position ASC`,
		networkID,
		sessionID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter sessiondomain.ListFilter) ([]sessiondomain.WashSession, error) {
	query := db.WithContext(ctx).
		Table("wash_sessions").
		Select(sessionColumns).
		Where("network_id = ?", filter.NetworkID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartnerID != 0 {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var sessions []sessiondomain.WashSession
	err := query.Order("created_at DESC, id DESC").Limit(limit).Scan(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) FindLockedForPeriod(ctx context.Context, db *gorm.DB, networkID, partnerID snowflake.ID, start, end time.Time) ([]sessiondomain.WashSession, error) {
	var sessions []sessiondomain.WashSession
	err := db.WithContext(ctx).Raw(
		`SELECT `+sessionColumns+` FROM wash_sessions
		 WHERE network_id = ? AND partner_id = ? AND status = ?
		   AND locked_at >= ? AND locked_at < ?
		 ORDER BY locked_at ASC, id ASC`,
		networkID,
		partnerID,
		sessiondomain.StatusLocked,
		start.UTC(),
		end.UTC(),
	).Scan(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateStatus writes every transition-owned column in one statement so
// a single version check covers the whole mutation.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, session *sessiondomain.WashSession, fromVersion int64) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE wash_sessions
		 SET status = ?, version = ?, rejection_reason = ?,
		     authorized_at = ?, started_at = ?, completed_at = ?, locked_at = ?, rejected_at = ?,
		     updated_at = ?
		 WHERE network_id = ? AND id = ? AND version = ?`,
		session.Status,
		session.Version,
		session.RejectionReason,
		session.AuthorizedAt,
		session.StartedAt,
		session.CompletedAt,
		session.LockedAt,
		session.RejectedAt,
		session.UpdatedAt,
		session.NetworkID,
		session.ID,
		fromVersion,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
