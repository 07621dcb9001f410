package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillingCycle is the period used to reset a partner's usage count.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleWeekly  BillingCycle = "WEEKLY"
)

// Track distinguishes a partner's directly employed fleet from
// subcontracted vehicles; each track carries its own discount schedule.
type Track string

const (
	TrackOwn           Track = "OWN"
	TrackSubcontracted Track = "SUBCONTRACTED"
)

// PartnerAccount is the billing-responsible fleet company. The core treats
// it as read-only; schedules are edited by administrative collaborators.
type PartnerAccount struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	NetworkID    snowflake.ID `json:"network_id" gorm:"column:network_id;not null;index"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	BillingCycle BillingCycle `json:"billing_cycle" gorm:"type:text;not null"`
	Active       bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PartnerAccount) TableName() string { return "partner_accounts" }

// DiscountTier is one row of a partner's volume-discount schedule for one
// track. Position preserves schedule order for deterministic reads.
type DiscountTier struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	NetworkID      snowflake.ID `json:"network_id" gorm:"column:network_id;not null;index"`
	PartnerID      snowflake.ID `json:"partner_id" gorm:"column:partner_id;not null;index"`
	Track          Track        `json:"track" gorm:"type:text;not null"`
	ThresholdCount int          `json:"threshold_count" gorm:"not null"`
	Percent        int          `json:"percent" gorm:"not null"`
	Position       int          `json:"position" gorm:"not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DiscountTier) TableName() string { return "partner_discount_tiers" }

func ValidBillingCycle(c BillingCycle) bool {
	return c == BillingCycleMonthly || c == BillingCycleWeekly
}

func ValidTrack(t Track) bool {
	return t == TrackOwn || t == TrackSubcontracted
}
