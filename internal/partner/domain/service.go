package domain

import (
	"context"
	"errors"
	"time"

	"github.com/washworks/fleetwash/internal/discount"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
}

type CreateRequest struct {
	Name         string            `json:"name"`
	BillingCycle BillingCycle      `json:"billing_cycle"`
	OwnSchedule  discount.Schedule `json:"own_schedule"`
	SubSchedule  discount.Schedule `json:"sub_schedule"`
}

type Response struct {
	ID           string            `json:"id"`
	NetworkID    string            `json:"network_id"`
	Name         string            `json:"name"`
	BillingCycle BillingCycle      `json:"billing_cycle"`
	Active       bool              `json:"active"`
	OwnSchedule  discount.Schedule `json:"own_schedule"`
	SubSchedule  discount.Schedule `json:"sub_schedule"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ScheduleForTrack selects the discount schedule matching the given track.
func (r *Response) ScheduleForTrack(track Track) discount.Schedule {
	if track == TrackSubcontracted {
		return r.SubSchedule
	}
	return r.OwnSchedule
}

var (
	ErrInvalidNetwork      = errors.New("invalid_network")
	ErrInvalidName         = errors.New("invalid_partner_name")
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
	ErrInvalidSchedule     = errors.New("invalid_discount_schedule")
	ErrInvalidID           = errors.New("invalid_partner_id")
	ErrNotFound            = errors.New("partner_not_found")
)
