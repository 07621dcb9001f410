package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/washworks/fleetwash/internal/discount"
	"github.com/washworks/fleetwash/internal/netcontext"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  partnerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  partnerdomain.Repository
}

func New(p Params) partnerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("partner.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req partnerdomain.CreateRequest) (*partnerdomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, partnerdomain.ErrInvalidName
	}
	if !partnerdomain.ValidBillingCycle(req.BillingCycle) {
		return nil, partnerdomain.ErrInvalidBillingCycle
	}
	if err := discount.ValidateSchedule(req.OwnSchedule); err != nil {
		return nil, partnerdomain.ErrInvalidSchedule
	}
	if err := discount.ValidateSchedule(req.SubSchedule); err != nil {
		return nil, partnerdomain.ErrInvalidSchedule
	}

	now := time.Now().UTC()
	account := &partnerdomain.PartnerAccount{
		ID:           s.genID.Generate(),
		NetworkID:    networkID,
		Name:         name,
		BillingCycle: req.BillingCycle,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tiers := make([]partnerdomain.DiscountTier, 0, len(req.OwnSchedule)+len(req.SubSchedule))
	tiers = append(tiers, s.buildTiers(account, partnerdomain.TrackOwn, req.OwnSchedule, now)...)
	tiers = append(tiers, s.buildTiers(account, partnerdomain.TrackSubcontracted, req.SubSchedule, now)...)

	if err := s.repo.Insert(ctx, s.db, account, tiers); err != nil {
		return nil, err
	}

	return s.toResponse(account, tiers), nil
}

func (s *Service) Get(ctx context.Context, id string) (*partnerdomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	partnerID, err := parseID(id)
	if err != nil {
		return nil, partnerdomain.ErrInvalidID
	}

	account, err := s.repo.FindByID(ctx, s.db, networkID, partnerID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, partnerdomain.ErrNotFound
	}

	tiers, err := s.repo.FindTiers(ctx, s.db, networkID, partnerID)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(account, tiers)

	// Stored schedules predate validation hardening on some installs; a
	// broken schedule must fail loudly rather than misprice sessions.
	if err := discount.ValidateSchedule(resp.OwnSchedule); err != nil {
		return nil, partnerdomain.ErrInvalidSchedule
	}
	if err := discount.ValidateSchedule(resp.SubSchedule); err != nil {
		return nil, partnerdomain.ErrInvalidSchedule
	}

	return resp, nil
}

func (s *Service) List(ctx context.Context) ([]partnerdomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.repo.List(ctx, s.db, networkID)
	if err != nil {
		return nil, err
	}

	resp := make([]partnerdomain.Response, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, *s.toResponse(&accounts[i], nil))
	}
	return resp, nil
}

func (s *Service) buildTiers(account *partnerdomain.PartnerAccount, track partnerdomain.Track, schedule discount.Schedule, now time.Time) []partnerdomain.DiscountTier {
	tiers := make([]partnerdomain.DiscountTier, 0, len(schedule))
	for i, tier := range schedule {
		tiers = append(tiers, partnerdomain.DiscountTier{
			ID:             s.genID.Generate(),
			NetworkID:      account.NetworkID,
			PartnerID:      account.ID,
			Track:          track,
			ThresholdCount: tier.ThresholdCount,
			Percent:        tier.Percent,
			Position:       i,
			CreatedAt:      now,
		})
	}
	return tiers
}

func (s *Service) toResponse(account *partnerdomain.PartnerAccount, tiers []partnerdomain.DiscountTier) *partnerdomain.Response {
	resp := &partnerdomain.Response{
		ID:           account.ID.String(),
		NetworkID:    account.NetworkID.String(),
		Name:         account.Name,
		BillingCycle: account.BillingCycle,
		Active:       account.Active,
		OwnSchedule:  discount.Schedule{},
		SubSchedule:  discount.Schedule{},
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
	for _, tier := range tiers {
		entry := discount.Tier{ThresholdCount: tier.ThresholdCount, Percent: tier.Percent}
		if tier.Track == partnerdomain.TrackSubcontracted {
			resp.SubSchedule = append(resp.SubSchedule, entry)
		} else {
			resp.OwnSchedule = append(resp.OwnSchedule, entry)
		}
	}
	return resp
}

func (s *Service) networkIDFromContext(ctx context.Context) (snowflake.ID, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return 0, partnerdomain.ErrInvalidNetwork
	}
	return networkID, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
