package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	usagedomain "github.com/washworks/fleetwash/internal/usage/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() usagedomain.Repository {
	return &repo{}
}

// CountSessions counts the partner's sessions created inside the window
// that were not rejected. REJECTED is the only excluded status: a session
// counts from the moment it is created, whatever it later becomes.
func (r *repo) CountSessions(ctx context.Context, db *gorm.DB, networkID, partnerID snowflake.ID, track partnerdomain.Track, periodStart, asOf time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM wash_sessions
		 WHERE network_id = ?
		   AND partner_id = ?
		   AND track = ?
		   AND status <> ?
		   AND created_at >= ?
		   AND created_at <= ?`,
		networkID,
		partnerID,
		track,
		"REJECTED",
		periodStart.UTC(),
		asOf.UTC(),
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
