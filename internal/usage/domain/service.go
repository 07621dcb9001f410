package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	"gorm.io/gorm"
)

// Service derives a partner's session count for the billing period
// containing asOf. The count is a pure query over stored sessions, so the
// same asOf always yields the same result.
type Service interface {
	CountForPeriod(ctx context.Context, partnerID snowflake.ID, track partnerdomain.Track, asOf time.Time) (int, error)
}

type Repository interface {
	CountSessions(ctx context.Context, db *gorm.DB, networkID, partnerID snowflake.ID, track partnerdomain.Track, periodStart, asOf time.Time) (int64, error)
}

var (
	ErrInvalidNetwork = errors.New("invalid_network")
	ErrInvalidPartner = errors.New("invalid_partner")
	ErrInvalidTrack   = errors.New("invalid_track")
	ErrPartnerMissing = errors.New("partner_not_found")
)
