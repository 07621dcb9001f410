package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType identifies who performed a transition.
type ActorType string

const (
	ActorTypeDriver ActorType = "DRIVER"
	ActorTypeUser   ActorType = "USER"
	ActorTypeSystem ActorType = "SYSTEM"
)

func ValidActorType(t ActorType) bool {
	return t == ActorTypeDriver || t == ActorTypeUser || t == ActorTypeSystem
}

// AuditEntry is one immutable record of a session transition or pricing
// decision. Rows are only ever inserted.
type AuditEntry struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	NetworkID      snowflake.ID      `json:"network_id" gorm:"column:network_id;not null;index"`
	SessionID      snowflake.ID      `json:"session_id" gorm:"column:session_id;not null;index"`
	Action         string            `json:"action" gorm:"type:text;not null"`
	PreviousStatus string            `json:"previous_status" gorm:"type:text"`
	NewStatus      string            `json:"new_status" gorm:"type:text"`
	ActorType      ActorType         `json:"actor_type" gorm:"type:text;not null"`
	ActorID        *string           `json:"actor_id,omitempty" gorm:"type:text"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	IPAddress      *string           `json:"ip_address,omitempty" gorm:"type:text"`
	UserAgent      *string           `json:"user_agent,omitempty" gorm:"type:text"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;index"`
}

func (AuditEntry) TableName() string { return "audit_entries" }

// AuditCursor is the keyset position for paginated reads.
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	NetworkID snowflake.ID
	SessionID snowflake.ID
	Action    string
	ActorType string
	StartAt   *time.Time
	EndAt     *time.Time
	Cursor    *AuditCursor
	Limit     int
}
