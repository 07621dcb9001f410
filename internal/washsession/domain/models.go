package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
)

// Status is the lifecycle state of a wash session. The valid path is
// CREATED -> AUTHORIZED -> IN_PROGRESS -> COMPLETED -> LOCKED, with
// REJECTED reachable from CREATED or AUTHORIZED. LOCKED and REJECTED
// are terminal.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusAuthorized Status = "AUTHORIZED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusLocked     Status = "LOCKED"
	StatusRejected   Status = "REJECTED"
)

// EntryMode records who initiated the service request.
type EntryMode string

const (
	EntryModeDriver   EntryMode = "DRIVER"
	EntryModeOperator EntryMode = "OPERATOR"
)

func ValidEntryMode(m EntryMode) bool {
	return m == EntryModeDriver || m == EntryModeOperator
}

// WashSession is one wash transaction. Price and discount percent are
// fixed when the session is created and never re-resolved; Version
// increments on every successful transition and guards conditional
// updates. Sessions are never deleted; terminal rows are retained for
// billing reconciliation.
type WashSession struct {
	ID               snowflake.ID        `json:"id" gorm:"primaryKey"`
	NetworkID        snowflake.ID        `json:"network_id" gorm:"column:network_id;not null;index"`
	LocationID       snowflake.ID        `json:"location_id" gorm:"column:location_id;not null;index"`
	ServicePackageID snowflake.ID        `json:"service_package_id" gorm:"column:service_package_id;not null"`
	PartnerID        snowflake.ID        `json:"partner_id" gorm:"column:partner_id;not null;index"`
	DriverID         *snowflake.ID       `json:"driver_id,omitempty" gorm:"column:driver_id"`
	Track            partnerdomain.Track `json:"track" gorm:"type:text;not null"`
	EntryMode        EntryMode           `json:"entry_mode" gorm:"type:text;not null"`
	Status           Status              `json:"status" gorm:"type:text;not null;index"`
	Version          int64               `json:"version" gorm:"not null"`
	UsageCount       int                 `json:"usage_count" gorm:"column:usage_count;not null"`
	DiscountPercent  int                 `json:"discount_percent" gorm:"not null"`
	TotalCents       int64               `json:"total_cents" gorm:"not null"`
	Currency         string              `json:"currency" gorm:"type:text;not null"`
	RejectionReason  *string             `json:"rejection_reason,omitempty" gorm:"type:text"`
	CreatedAt        time.Time           `json:"created_at" gorm:"not null;index"`
	AuthorizedAt     *time.Time          `json:"authorized_at,omitempty"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	LockedAt         *time.Time          `json:"locked_at,omitempty"`
	RejectedAt       *time.Time          `json:"rejected_at,omitempty"`
	UpdatedAt        time.Time           `json:"updated_at" gorm:"not null"`
}

func (WashSession) TableName() string { return "wash_sessions" }

// WashSessionItem is one priced component of a session, e.g. the tractor
// and the trailer of a rig washed together. Position preserves creation
// order so billing lines come out deterministic.
type WashSessionItem struct {
	ID             snowflake.ID              `json:"id" gorm:"primaryKey"`
	NetworkID      snowflake.ID              `json:"network_id" gorm:"column:network_id;not null;index"`
	SessionID      snowflake.ID              `json:"session_id" gorm:"column:session_id;not null;index"`
	Position       int                       `json:"position" gorm:"not null"`
	VehicleType    catalogdomain.VehicleType `json:"vehicle_type" gorm:"type:text;not null"`
	PlateNumber    string                    `json:"plate_number" gorm:"type:text;not null"`
	UnitPriceCents int64                     `json:"unit_price_cents" gorm:"not null"`
	LineTotalCents int64                     `json:"line_total_cents" gorm:"not null"`
	CreatedAt      time.Time                 `json:"created_at" gorm:"not null"`
}

func (WashSessionItem) TableName() string { return "wash_session_items" }

// Terminal reports whether no further transitions are permitted.
func Terminal(s Status) bool {
	return s == StatusLocked || s == StatusRejected
}
