package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/washworks/fleetwash/internal/discount"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// racingRepo bumps the stored version once between the service's read
// and its conditional write, reproducing a concurrent transition.
type racingRepo struct {
	sessiondomain.Repository
	raced bool
}

func (r *racingRepo) UpdateStatus(ctx context.Context, db *gorm.DB, session *sessiondomain.WashSession, fromVersion int64) (int64, error) {
	if !r.raced {
		r.raced = true
		err := db.WithContext(ctx).Exec(
			`UPDATE wash_sessions SET version = version + 1 WHERE id = ?`,
			session.ID,
		).Error
		if err != nil {
			return 0, err
		}
	}
	return r.Repository.UpdateStatus(ctx, db, session, fromVersion)
}

func TestConcurrentTransitionConflict(t *testing.T) {
	h := newHarness(t, discount.Schedule{})
	created := h.createSession(t)

	racing := &racingRepo{Repository: h.repo}
	svc := New(Params{
		DB:      h.db,
		Log:     zap.NewNop(),
		GenID:   h.node,
		Clock:   h.clk,
		Repo:    racing,
		Partner: h.partner,
		Usage:   h.usageSvc,
		Catalog: h.catalog,
		Audit:   h.auditSvc,
	})

	_, err := svc.Authorize(h.ctx, created.ID)
	assert.ErrorIs(t, err, sessiondomain.ErrConcurrentModification)

	// The losing write rolled back: status and version are unchanged and
	// no audit entry was appended for the failed attempt.
	current, err := h.svc.Get(h.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusCreated, current.Status)
	assert.Equal(t, int64(1), current.Version)
	assert.Len(t, h.auditTrail(t, created.ID), 1)

	// Re-read and retry succeeds once the interference is gone.
	authorized, err := svc.Authorize(h.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusAuthorized, authorized.Status)
}

func TestStaleVersionWriteTouchesNothing(t *testing.T) {
	h := newHarness(t, discount.Schedule{})
	created := h.createSession(t)

	sessionID := mustID(t, created.ID)
	stale, err := h.repo.FindByID(h.ctx, h.db, h.networkID, sessionID)
	require.NoError(t, err)
	require.NotNil(t, stale)

	_, err = h.svc.Authorize(h.ctx, created.ID)
	require.NoError(t, err)

	staleVersion := stale.Version
	stale.Status = sessiondomain.StatusRejected
	stale.Version = staleVersion + 1
	rows, err := h.repo.UpdateStatus(h.ctx, h.db, stale, staleVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	current, err := h.repo.FindByID(h.ctx, h.db, h.networkID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusAuthorized, current.Status)
}
