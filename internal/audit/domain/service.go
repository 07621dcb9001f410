package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/washworks/fleetwash/pkg/db/pagination"
	"gorm.io/gorm"
)

// Record captures one transition: previous and new status plus any pricing
// snapshot carried in metadata.
type Record struct {
	SessionID      snowflake.ID
	Action         string
	PreviousStatus string
	NewStatus      string
	Metadata       map[string]any
}

type ListRequest struct {
	pagination.Pagination
	SessionID string
	Action    string
	ActorType string
	StartAt   *time.Time
	EndAt     *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Entries []AuditEntry `json:"entries"`
}

type Service interface {
	// Append writes one immutable entry using the given DB handle so callers
	// can bind the write into the same transaction as a state change.
	Append(ctx context.Context, db *gorm.DB, networkID snowflake.ID, record Record) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidNetwork   = errors.New("invalid_network")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidSession   = errors.New("invalid_session_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
