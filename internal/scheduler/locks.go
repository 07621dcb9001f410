package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"gorm.io/gorm"
)

// WorkSession is the claim-time view of a session awaiting finalization.
type WorkSession struct {
	ID        snowflake.ID
	NetworkID snowflake.ID
}

// claimCompletedSessions fetches a batch of COMPLETED sessions with
// FOR UPDATE SKIP LOCKED so concurrent scheduler instances never claim
// the same rows. The row lock only covers the claim; the transition
// itself is still guarded by the session version check.
func (s *Scheduler) claimCompletedSessions(ctx context.Context, limit int) ([]WorkSession, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var work []WorkSession
	err := s.db.WithContext(claimCtx).Transaction(func(tx *gorm.DB) error {
		return tx.Raw(
			`SELECT id, network_id
			 FROM wash_sessions
			 WHERE status = ?
			 ORDER BY id
			 FOR UPDATE SKIP LOCKED
			 LIMIT ?`,
			sessiondomain.StatusCompleted,
			limit,
		).Scan(&work).Error
	})
	if err != nil {
		return nil, err
	}
	return work, nil
}
