package domain

import (
	"context"
	"time"

	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Authorize(ctx context.Context, id string) (*Response, error)
	Start(ctx context.Context, id string) (*Response, error)
	Complete(ctx context.Context, id string) (*Response, error)
	Reject(ctx context.Context, id, reason string) (*Response, error)
	Lock(ctx context.Context, id string) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

// ComponentInput is one vehicle unit to price and wash.
type ComponentInput struct {
	VehicleType catalogdomain.VehicleType `json:"vehicle_type"`
	PlateNumber string                    `json:"plate_number"`
}

type CreateRequest struct {
	LocationID       string              `json:"location_id"`
	ServicePackageID string              `json:"service_package_id"`
	PartnerID        string              `json:"partner_id"`
	DriverID         string              `json:"driver_id,omitempty"`
	Track            partnerdomain.Track `json:"track"`
	EntryMode        EntryMode           `json:"entry_mode"`
	Components       []ComponentInput    `json:"components"`
}

type ListRequest struct {
	Status    string
	PartnerID string
	Limit     int
}

// ComponentResponse carries the price fixed for one component at
// creation. LineTotalCents already has the session discount applied.
type ComponentResponse struct {
	ID             string                    `json:"id"`
	Position       int                       `json:"position"`
	VehicleType    catalogdomain.VehicleType `json:"vehicle_type"`
	PlateNumber    string                    `json:"plate_number"`
	UnitPriceCents int64                     `json:"unit_price_cents"`
	LineTotalCents int64                     `json:"line_total_cents"`
}

type Response struct {
	ID               string              `json:"id"`
	NetworkID        string              `json:"network_id"`
	LocationID       string              `json:"location_id"`
	ServicePackageID string              `json:"service_package_id"`
	PartnerID        string              `json:"partner_id"`
	DriverID         string              `json:"driver_id,omitempty"`
	Track            partnerdomain.Track `json:"track"`
	EntryMode        EntryMode           `json:"entry_mode"`
	Status           Status              `json:"status"`
	Version          int64               `json:"version"`
	UsageCount       int                 `json:"usage_count"`
	DiscountPercent  int                 `json:"discount_percent"`
	TotalCents       int64               `json:"total_cents"`
	Currency         string              `json:"currency"`
	RejectionReason  string              `json:"rejection_reason,omitempty"`
	Components       []ComponentResponse `json:"components"`
	CreatedAt        time.Time           `json:"created_at"`
	AuthorizedAt     *time.Time          `json:"authorized_at,omitempty"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	LockedAt         *time.Time          `json:"locked_at,omitempty"`
	RejectedAt       *time.Time          `json:"rejected_at,omitempty"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
