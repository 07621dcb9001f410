package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/washworks/fleetwash/internal/billingline/domain"
	"github.com/washworks/fleetwash/internal/netcontext"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Sessions sessiondomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	sessions sessiondomain.Repository
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billingline.service"),
		sessions: p.Sessions,
	}
}

func (s *Service) Compose(ctx context.Context, sessionID string) (*billingdomain.ComposeResponse, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return nil, sessiondomain.ErrInvalidNetwork
	}
	id, err := snowflake.ParseString(strings.TrimSpace(sessionID))
	if err != nil || id == 0 {
		return nil, sessiondomain.ErrInvalidID
	}

	session, err := s.sessions.FindByID(ctx, s.db, networkID, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, sessiondomain.ErrNotFound
	}
	if session.Status != sessiondomain.StatusLocked {
		return nil, billingdomain.ErrSessionNotLocked
	}

	items, err := s.sessions.FindItems(ctx, s.db, networkID, id)
	if err != nil {
		return nil, err
	}

	lines := make([]billingdomain.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, billingdomain.LineItem{
			SessionID:       session.ID.String(),
			Position:        item.Position,
			VehicleType:     item.VehicleType,
			PlateNumber:     item.PlateNumber,
			Description:     fmt.Sprintf("Wash service %s %s", item.VehicleType, item.PlateNumber),
			UnitPriceCents:  item.UnitPriceCents,
			DiscountPercent: session.DiscountPercent,
			LineTotalCents:  item.LineTotalCents,
			Currency:        session.Currency,
		})
	}

	return &billingdomain.ComposeResponse{
		SessionID:  session.ID.String(),
		PartnerID:  session.PartnerID.String(),
		LocationID: session.LocationID.String(),
		Currency:   session.Currency,
		TotalCents: session.TotalCents,
		LockedAt:   session.LockedAt,
		Lines:      lines,
	}, nil
}
