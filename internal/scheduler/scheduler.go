package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/washworks/fleetwash/internal/actorcontext"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	"github.com/washworks/fleetwash/internal/clock"
	"github.com/washworks/fleetwash/internal/config"
	"github.com/washworks/fleetwash/internal/netcontext"
	"github.com/washworks/fleetwash/internal/observability/metrics"
	"github.com/washworks/fleetwash/internal/ratelimit"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies not configured")

const leaderLockKey = "scheduler:leader:lock_completed"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	SessionSvc sessiondomain.Service
	Clock      clock.Clock
	Billing    *config.BillingConfigHolder `optional:"true"`
	Locker     *ratelimit.Locker           `optional:"true"`
	Metrics    *metrics.Metrics            `optional:"true"`
	Config     Config                      `optional:"true"`
}

// Scheduler finalizes completed sessions in the background: it claims a
// batch of COMPLETED sessions and locks each one as a SYSTEM actor.
// Failures on one session are logged and skipped, never aborting the
// rest of the batch.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	sessionSvc sessiondomain.Service
	clock      clock.Clock
	billing    *config.BillingConfigHolder
	locker     *ratelimit.Locker
	metrics    *metrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.SessionSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		sessionSvc: p.SessionSvc,
		clock:      p.Clock,
		billing:    p.Billing,
		locker:     p.Locker,
		metrics:    p.Metrics,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	// Only one instance runs the batch when a distributed lock is
	// available; without redis the deployment is single-instance.
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, leaderLockKey, s.cfg.LeaderLockTTL)
		if err != nil {
			return fmt.Errorf("leader lock: %w", err)
		}
		if !ok {
			s.log.Debug("another instance holds the finalization lock")
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, leaderLockKey, token); err != nil {
				s.log.Warn("failed to release leader lock", zap.Error(err))
			}
		}()
	}

	ctx = actorcontext.WithActor(ctx, string(auditdomain.ActorTypeSystem), "scheduler")
	return s.LockCompletedJob(ctx)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("finalization run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// LockCompletedJob claims one batch of COMPLETED sessions and locks
// them. A session that moved or was locked by someone else since the
// claim simply loses its transition and is skipped.
func (s *Scheduler) LockCompletedJob(ctx context.Context) error {
	batchSize := s.cfg.BatchSize
	if s.billing != nil {
		if size := s.billing.Get().LockBatchSize; size > 0 {
			batchSize = size
		}
	}

	work, err := s.claimCompletedSessions(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("claim completed sessions: %w", err)
	}
	if len(work) == 0 {
		return nil
	}

	var locked, skipped int64
	for _, item := range work {
		sessionCtx := netcontext.WithNetworkID(ctx, int64(item.NetworkID))
		if _, err := s.sessionSvc.Lock(sessionCtx, item.ID.String()); err != nil {
			skipped++
			s.log.Warn("session finalization skipped",
				zap.String("session_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		locked++
	}

	s.metrics.RecordLockBatch(ctx, locked, skipped)
	s.log.Info("finalization batch complete",
		zap.Int("claimed", len(work)),
		zap.Int64("locked", locked),
		zap.Int64("skipped", skipped),
	)
	return nil
}
