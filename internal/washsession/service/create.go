package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/discount"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Create validates the request against the caller's network, fixes the
// price and discount percent once, and persists the session in CREATED
// together with its first audit entry. The session being created counts
// toward its own tier, so the 50th session of a period reaches a
// threshold of 50.
func (s *Service) Create(ctx context.Context, req sessiondomain.CreateRequest) (*sessiondomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	locationID, err := parseID(req.LocationID)
	if err != nil || locationID == 0 {
		return nil, catalogdomain.ErrInvalidLocation
	}
	packageID, err := parseID(req.ServicePackageID)
	if err != nil || packageID == 0 {
		return nil, catalogdomain.ErrInvalidServicePackage
	}
	if !partnerdomain.ValidTrack(req.Track) {
		return nil, sessiondomain.ErrInvalidTrack
	}
	if !sessiondomain.ValidEntryMode(req.EntryMode) {
		return nil, sessiondomain.ErrInvalidEntryMode
	}
	if len(req.Components) == 0 {
		return nil, sessiondomain.ErrInvalidComponents
	}
	for _, component := range req.Components {
		if !catalogdomain.ValidVehicleType(component.VehicleType) {
			return nil, catalogdomain.ErrInvalidVehicleType
		}
		if strings.TrimSpace(component.PlateNumber) == "" {
			return nil, sessiondomain.ErrInvalidPlateNumber
		}
	}

	partnerID, err := parseID(req.PartnerID)
	if err != nil || partnerID == 0 {
		return nil, sessiondomain.ErrInvalidPartner
	}
	var driverID *snowflake.ID
	if strings.TrimSpace(req.DriverID) != "" {
		parsed, err := parseID(req.DriverID)
		if err != nil || parsed == 0 {
			return nil, sessiondomain.ErrInvalidDriver
		}
		driverID = &parsed
	}

	// Cross-tenant partner lookup also validates the stored schedules.
	account, err := s.partner.Get(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, sessiondomain.ErrInvalidPartner
	}

	now := s.clock.Now()
	prior, err := s.usage.CountForPeriod(ctx, partnerID, req.Track, now)
	if err != nil {
		return nil, err
	}
	usageCount := prior + 1
	percent := discount.Resolve(account.ScheduleForTrack(req.Track), usageCount)

	session := &sessiondomain.WashSession{
		ID:               s.genID.Generate(),
		NetworkID:        networkID,
		LocationID:       locationID,
		ServicePackageID: packageID,
		PartnerID:        partnerID,
		DriverID:         driverID,
		Track:            req.Track,
		EntryMode:        req.EntryMode,
		Status:           sessiondomain.StatusCreated,
		Version:          1,
		UsageCount:       usageCount,
		DiscountPercent:  percent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	items := make([]sessiondomain.WashSessionItem, 0, len(req.Components))
	for i, component := range req.Components {
		price, err := s.catalog.GetPrice(ctx, catalogdomain.PriceLookup{
			LocationID:       req.LocationID,
			ServicePackageID: req.ServicePackageID,
			VehicleType:      component.VehicleType,
		})
		if err != nil {
			return nil, err
		}
		if session.Currency == "" {
			session.Currency = price.Currency
		} else if session.Currency != price.Currency {
			return nil, sessiondomain.ErrCurrencyMismatch
		}

		lineTotal := discountedCents(price.UnitPriceCents, percent)
		items = append(items, sessiondomain.WashSessionItem{
			ID:             s.genID.Generate(),
			NetworkID:      networkID,
			SessionID:      session.ID,
			Position:       i,
			VehicleType:    component.VehicleType,
			PlateNumber:    strings.TrimSpace(component.PlateNumber),
			UnitPriceCents: price.UnitPriceCents,
			LineTotalCents: lineTotal,
			CreatedAt:      now,
		})
		session.TotalCents += lineTotal
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, session, items); err != nil {
			return err
		}
		return s.audit.Append(ctx, tx, networkID, auditdomain.Record{
			SessionID:      session.ID,
			Action:         "session.create",
			PreviousStatus: "",
			NewStatus:      string(sessiondomain.StatusCreated),
			Metadata: map[string]any{
				"track":            string(session.Track),
				"usage_count":      session.UsageCount,
				"discount_percent": session.DiscountPercent,
				"total_cents":      session.TotalCents,
				"currency":         session.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPricingResolved(ctx, string(session.Track), percent)
	s.metrics.RecordTransition(ctx, "", string(sessiondomain.StatusCreated))
	s.log.Info("wash session created",
		zap.String("session_id", session.ID.String()),
		zap.String("partner_id", session.PartnerID.String()),
		zap.Int("usage_count", usageCount),
		zap.Int("discount_percent", percent),
		zap.Int64("total_cents", session.TotalCents),
	)

	return s.toResponse(session, items), nil
}

// discountedCents applies a whole-number percent discount, rounding the
// result half up to the nearest cent.
func discountedCents(unit int64, percent int) int64 {
	return (unit*int64(100-percent) + 50) / 100
}
