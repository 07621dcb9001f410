package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/netcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) GetPrice(ctx context.Context, req catalogdomain.PriceLookup) (*catalogdomain.PriceResponse, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	locationID, err := parseID(req.LocationID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLocation
	}
	packageID, err := parseID(req.ServicePackageID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidServicePackage
	}
	if !catalogdomain.ValidVehicleType(req.VehicleType) {
		return nil, catalogdomain.ErrInvalidVehicleType
	}

	price, err := s.repo.FindPrice(ctx, s.db, networkID, locationID, packageID, req.VehicleType)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, catalogdomain.ErrPriceNotAvailable
	}

	return toResponse(price), nil
}

func (s *Service) Upsert(ctx context.Context, req catalogdomain.UpsertRequest) (*catalogdomain.PriceResponse, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	locationID, err := parseID(req.LocationID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLocation
	}
	packageID, err := parseID(req.ServicePackageID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidServicePackage
	}
	if !catalogdomain.ValidVehicleType(req.VehicleType) {
		return nil, catalogdomain.ErrInvalidVehicleType
	}
	if req.UnitPriceCents < 0 {
		return nil, catalogdomain.ErrInvalidUnitPrice
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, catalogdomain.ErrInvalidCurrency
	}

	now := time.Now().UTC()
	price := &catalogdomain.LocationPrice{
		ID:               s.genID.Generate(),
		NetworkID:        networkID,
		LocationID:       locationID,
		ServicePackageID: packageID,
		VehicleType:      req.VehicleType,
		UnitPriceCents:   req.UnitPriceCents,
		Currency:         currency,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Upsert(ctx, s.db, price); err != nil {
		return nil, err
	}

	return toResponse(price), nil
}

func (s *Service) List(ctx context.Context, locationID string) ([]catalogdomain.PriceResponse, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	locID, err := parseID(locationID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLocation
	}

	prices, err := s.repo.List(ctx, s.db, networkID, locID)
	if err != nil {
		return nil, err
	}

	resp := make([]catalogdomain.PriceResponse, 0, len(prices))
	for i := range prices {
		resp = append(resp, *toResponse(&prices[i]))
	}
	return resp, nil
}

func (s *Service) networkIDFromContext(ctx context.Context) (snowflake.ID, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return 0, catalogdomain.ErrInvalidNetwork
	}
	return networkID, nil
}

func toResponse(p *catalogdomain.LocationPrice) *catalogdomain.PriceResponse {
	return &catalogdomain.PriceResponse{
		ID:               p.ID.String(),
		NetworkID:        p.NetworkID.String(),
		LocationID:       p.LocationID.String(),
		ServicePackageID: p.ServicePackageID.String(),
		VehicleType:      p.VehicleType,
		UnitPriceCents:   p.UnitPriceCents,
		Currency:         p.Currency,
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
