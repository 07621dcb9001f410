package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transitionSpec describes one lifecycle operation: its valid source
// states, the target state, and the timestamp mutation it applies.
type transitionSpec struct {
	operation string
	action    string
	sources   []sessiondomain.Status
	target    sessiondomain.Status
	apply     func(session *sessiondomain.WashSession, now time.Time)
	metadata  map[string]any
}

func (s *Service) Authorize(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return s.transition(ctx, id, transitionSpec{
		operation: "authorize",
		action:    "session.authorize",
		sources:   []sessiondomain.Status{sessiondomain.StatusCreated},
		target:    sessiondomain.StatusAuthorized,
		apply: func(session *sessiondomain.WashSession, now time.Time) {
			session.AuthorizedAt = &now
		},
	})
}

func (s *Service) Start(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return s.transition(ctx, id, transitionSpec{
		operation: "start",
		action:    "session.start",
		sources:   []sessiondomain.Status{sessiondomain.StatusAuthorized},
		target:    sessiondomain.StatusInProgress,
		apply: func(session *sessiondomain.WashSession, now time.Time) {
			session.StartedAt = &now
		},
	})
}

// Complete finishes the wash. The price fixed at creation stands; usage
// drift between creation and completion does not re-open pricing.
func (s *Service) Complete(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return s.transition(ctx, id, transitionSpec{
		operation: "complete",
		action:    "session.complete",
		sources:   []sessiondomain.Status{sessiondomain.StatusInProgress},
		target:    sessiondomain.StatusCompleted,
		apply: func(session *sessiondomain.WashSession, now time.Time) {
			session.CompletedAt = &now
		},
	})
}

func (s *Service) Reject(ctx context.Context, id, reason string) (*sessiondomain.Response, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, sessiondomain.ErrInvalidReason
	}
	return s.transition(ctx, id, transitionSpec{
		operation: "reject",
		action:    "session.reject",
		sources:   []sessiondomain.Status{sessiondomain.StatusCreated, sessiondomain.StatusAuthorized},
		target:    sessiondomain.StatusRejected,
		apply: func(session *sessiondomain.WashSession, now time.Time) {
			session.RejectedAt = &now
			session.RejectionReason = &reason
		},
		metadata: map[string]any{"reason": reason},
	})
}

func (s *Service) Lock(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return s.transition(ctx, id, transitionSpec{
		operation: "lock",
		action:    "session.lock",
		sources:   []sessiondomain.Status{sessiondomain.StatusCompleted},
		target:    sessiondomain.StatusLocked,
		apply: func(session *sessiondomain.WashSession, now time.Time) {
			session.LockedAt = &now
		},
	})
}

func (s *Service) transition(ctx context.Context, id string, spec transitionSpec) (*sessiondomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sessionID, err := parseID(id)
	if err != nil || sessionID == 0 {
		return nil, sessiondomain.ErrInvalidID
	}

	session, err := s.repo.FindByID(ctx, s.db, networkID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, sessiondomain.ErrNotFound
	}

	if !allowedSource(session.Status, spec.sources) {
		return nil, &sessiondomain.TransitionError{Status: session.Status, Operation: spec.operation}
	}

	previous := session.Status
	fromVersion := session.Version
	now := s.clock.Now()

	session.Status = spec.target
	session.Version = fromVersion + 1
	session.UpdatedAt = now
	if spec.apply != nil {
		spec.apply(session, now)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateStatus(ctx, tx, session, fromVersion)
		if err != nil {
			return err
		}
		if rows == 0 {
			return sessiondomain.ErrConcurrentModification
		}
		return s.audit.Append(ctx, tx, networkID, auditdomain.Record{
			SessionID:      session.ID,
			Action:         spec.action,
			PreviousStatus: string(previous),
			NewStatus:      string(spec.target),
			Metadata:       spec.metadata,
		})
	})
	if err != nil {
		if err == sessiondomain.ErrConcurrentModification {
			s.metrics.RecordTransitionConflict(ctx, spec.operation)
			s.log.Warn("transition lost version race",
				zap.String("session_id", session.ID.String()),
				zap.String("operation", spec.operation),
			)
		}
		return nil, err
	}

	s.metrics.RecordTransition(ctx, string(previous), string(spec.target))
	s.log.Info("wash session transitioned",
		zap.String("session_id", session.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(spec.target)),
	)

	return s.respond(ctx, session)
}

func allowedSource(status sessiondomain.Status, sources []sessiondomain.Status) bool {
	for _, source := range sources {
		if status == source {
			return true
		}
	}
	return false
}
