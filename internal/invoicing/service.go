package invoicing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	billingdomain "github.com/washworks/fleetwash/internal/billingline/domain"
	"github.com/washworks/fleetwash/internal/config"
	"github.com/washworks/fleetwash/internal/netcontext"
	"github.com/washworks/fleetwash/internal/observability/metrics"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	"github.com/washworks/fleetwash/internal/providers/invoice"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidPeriod    = errors.New("invalid_billing_period")
	ErrNothingToInvoice = errors.New("nothing_to_invoice")
)

// RunRequest names one partner and one billing period to invoice.
type RunRequest struct {
	PartnerID   string    `json:"partner_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

type RunResult struct {
	PartnerID    string `json:"partner_id"`
	SessionCount int    `json:"session_count"`
	TotalCents   int64  `json:"total_cents"`
	Currency     string `json:"currency"`
	Provider     string `json:"provider"`
	Reference    string `json:"reference"`
}

type Service interface {
	// Issue gathers the partner's LOCKED sessions for the period,
	// composes their billing lines, and hands them to the configured
	// invoice provider. Sessions are never mutated.
	Issue(ctx context.Context, req RunRequest) (*RunResult, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Sessions sessiondomain.Repository
	Composer billingdomain.Service
	Partner  partnerdomain.Service
	Provider invoice.Provider
	Audit    auditdomain.Service
	Billing  *config.BillingConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	sessions sessiondomain.Repository
	composer billingdomain.Service
	partner  partnerdomain.Service
	provider invoice.Provider
	audit    auditdomain.Service
	billing  *config.BillingConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("invoicing.service"),
		sessions: p.Sessions,
		composer: p.Composer,
		partner:  p.Partner,
		provider: p.Provider,
		audit:    p.Audit,
		billing:  p.Billing,
		metrics:  p.Metrics,
	}
}

func (s *service) Issue(ctx context.Context, req RunRequest) (*RunResult, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return nil, sessiondomain.ErrInvalidNetwork
	}
	partnerID, err := snowflake.ParseString(strings.TrimSpace(req.PartnerID))
	if err != nil || partnerID == 0 {
		return nil, partnerdomain.ErrInvalidID
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || !req.PeriodStart.Before(req.PeriodEnd) {
		return nil, ErrInvalidPeriod
	}

	account, err := s.partner.Get(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessions.FindLockedForPeriod(ctx, s.db, networkID, partnerID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNothingToInvoice
	}

	billing := s.billing.Get()
	issue := invoice.IssueRequest{
		NetworkID:      networkID.String(),
		PartnerID:      account.ID,
		PartnerName:    account.Name,
		Currency:       billing.Currency,
		PaymentDueDays: billing.PaymentDueDays,
		PeriodStart:    req.PeriodStart.UTC(),
		PeriodEnd:      req.PeriodEnd.UTC(),
	}

	for i := range sessions {
		composed, err := s.composer.Compose(ctx, sessions[i].ID.String())
		if err != nil {
			return nil, err
		}
		if composed.Currency != "" {
			issue.Currency = composed.Currency
		}
		for _, line := range composed.Lines {
			issue.Lines = append(issue.Lines, invoice.Line{
				Description: line.Description,
				Quantity:    1,
				AmountCents: line.LineTotalCents,
			})
			issue.TotalCents += line.LineTotalCents
		}
	}

	result, err := s.provider.Issue(ctx, issue)
	if err != nil {
		s.metrics.RecordInvoiceHandoff(ctx, s.provider.Name(), "error")
		s.log.Warn("invoice hand-off failed",
			zap.String("partner_id", account.ID),
			zap.Int("sessions", len(sessions)),
			zap.Error(err),
		)
		return nil, err
	}

	for i := range sessions {
		if err := s.audit.Append(ctx, s.db, networkID, auditdomain.Record{
			SessionID:      sessions[i].ID,
			Action:         "session.invoiced",
			PreviousStatus: string(sessiondomain.StatusLocked),
			NewStatus:      string(sessiondomain.StatusLocked),
			Metadata: map[string]any{
				"provider":  s.provider.Name(),
				"reference": result.Reference,
			},
		}); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordInvoiceHandoff(ctx, s.provider.Name(), "issued")
	s.log.Info("invoice handed off",
		zap.String("partner_id", account.ID),
		zap.Int("sessions", len(sessions)),
		zap.Int64("total_cents", issue.TotalCents),
		zap.String("reference", result.Reference),
	)

	return &RunResult{
		PartnerID:    account.ID,
		SessionCount: len(sessions),
		TotalCents:   issue.TotalCents,
		Currency:     issue.Currency,
		Provider:     s.provider.Name(),
		Reference:    result.Reference,
	}, nil
}
