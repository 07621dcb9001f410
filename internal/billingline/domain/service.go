package domain

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
)

// LineItem is one invoice-ready line for one washed component. Amounts
// are the values fixed on the session at creation, never re-resolved.
type LineItem struct {
	SessionID       string                    `json:"session_id"`
	Position        int                       `json:"position"`
	VehicleType     catalogdomain.VehicleType `json:"vehicle_type"`
	PlateNumber     string                    `json:"plate_number"`
	Description     string                    `json:"description"`
	UnitPriceCents  int64                     `json:"unit_price_cents"`
	DiscountPercent int                       `json:"discount_percent"`
	LineTotalCents  int64                     `json:"line_total_cents"`
	Currency        string                    `json:"currency"`
}

// ComposeResponse is the full billing view of one locked session. The
// orchestrator forwards it to the invoice provider; the composer itself
// never calls the provider.
type ComposeResponse struct {
	SessionID  string     `json:"session_id"`
	PartnerID  string     `json:"partner_id"`
	LocationID string     `json:"location_id"`
	Currency   string     `json:"currency"`
	TotalCents int64      `json:"total_cents"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	Lines      []LineItem `json:"lines"`
}

type Service interface {
	// Compose expands a LOCKED session into line items in component
	// creation order. Any other status is a precondition failure.
	Compose(ctx context.Context, sessionID string) (*ComposeResponse, error)
}

var ErrSessionNotLocked = errors.New("session_not_locked")
