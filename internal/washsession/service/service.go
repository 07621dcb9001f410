package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/clock"
	"github.com/washworks/fleetwash/internal/netcontext"
	"github.com/washworks/fleetwash/internal/observability/metrics"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	usagedomain "github.com/washworks/fleetwash/internal/usage/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    sessiondomain.Repository
	Partner partnerdomain.Service
	Usage   usagedomain.Service
	Catalog catalogdomain.Service
	Audit   auditdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    sessiondomain.Repository
	partner partnerdomain.Service
	usage   usagedomain.Service
	catalog catalogdomain.Service
	audit   auditdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) sessiondomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("washsession.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		partner: p.Partner,
		usage:   p.Usage,
		catalog: p.Catalog,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

func (s *Service) networkIDFromContext(ctx context.Context) (snowflake.ID, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return 0, sessiondomain.ErrInvalidNetwork
	}
	return networkID, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}

func (s *Service) toResponse(session *sessiondomain.WashSession, items []sessiondomain.WashSessionItem) *sessiondomain.Response {
	resp := &sessiondomain.Response{
		ID:               session.ID.String(),
		NetworkID:        session.NetworkID.String(),
		LocationID:       session.LocationID.String(),
		ServicePackageID: session.ServicePackageID.String(),
		PartnerID:        session.PartnerID.String(),
		Track:            session.Track,
		EntryMode:        session.EntryMode,
		Status:           session.Status,
		Version:          session.Version,
		UsageCount:       session.UsageCount,
		DiscountPercent:  session.DiscountPercent,
		TotalCents:       session.TotalCents,
		Currency:         session.Currency,
		Components:       make([]sessiondomain.ComponentResponse, 0, len(items)),
		CreatedAt:        session.CreatedAt,
		AuthorizedAt:     session.AuthorizedAt,
		StartedAt:        session.StartedAt,
		CompletedAt:      session.CompletedAt,
		LockedAt:         session.LockedAt,
		RejectedAt:       session.RejectedAt,
		UpdatedAt:        session.UpdatedAt,
	}
	if session.DriverID != nil {
		resp.DriverID = session.DriverID.String()
	}
	if session.RejectionReason != nil {
		resp.RejectionReason = *session.RejectionReason
	}
	for _, item := range items {
		resp.Components = append(resp.Components, sessiondomain.ComponentResponse{
			ID:             item.ID.String(),
			Position:       item.Position,
			VehicleType:    item.VehicleType,
			PlateNumber:    item.PlateNumber,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return resp
}

func (s *Service) respond(ctx context.Context, session *sessiondomain.WashSession) (*sessiondomain.Response, error) {
	items, err := s.repo.FindItems(ctx, s.db, session.NetworkID, session.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(session, items), nil
}
