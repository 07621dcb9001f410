package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/washworks/fleetwash/internal/netcontext"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	usagedomain "github.com/washworks/fleetwash/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        usagedomain.Repository
	PartnerRepo partnerdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        usagedomain.Repository
	partnerRepo partnerdomain.Repository
}

func New(p Params) usagedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("usage.service"),
		repo:        p.Repo,
		partnerRepo: p.PartnerRepo,
	}
}

func (s *Service) CountForPeriod(ctx context.Context, partnerID snowflake.ID, track partnerdomain.Track, asOf time.Time) (int, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return 0, usagedomain.ErrInvalidNetwork
	}
	if partnerID == 0 {
		return 0, usagedomain.ErrInvalidPartner
	}
	if !partnerdomain.ValidTrack(track) {
		return 0, usagedomain.ErrInvalidTrack
	}

	account, err := s.partnerRepo.FindByID(ctx, s.db, networkID, partnerID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, usagedomain.ErrPartnerMissing
	}

	periodStart := usagedomain.PeriodStart(account.BillingCycle, asOf)
	count, err := s.repo.CountSessions(ctx, s.db, networkID, partnerID, track, periodStart, asOf)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
