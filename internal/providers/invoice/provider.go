package invoice

import (
	"context"
	"errors"
	"time"
)

// Line is one invoice line as the external provider expects it.
type Line struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amount_cents"`
}

// IssueRequest carries everything the provider needs to raise an invoice
// for one partner and billing period.
type IssueRequest struct {
	NetworkID      string    `json:"network_id"`
	PartnerID      string    `json:"partner_id"`
	PartnerName    string    `json:"partner_name"`
	Currency       string    `json:"currency"`
	PaymentDueDays int       `json:"payment_due_days"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	TotalCents     int64     `json:"total_cents"`
	Lines          []Line    `json:"lines"`
}

// IssueResult is the provider's acknowledgement.
type IssueResult struct {
	Reference string `json:"reference"`
}

type Provider interface {
	Name() string
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
}

var (
	ErrProviderNotConfigured = errors.New("invoice_provider_not_configured")
	ErrProviderRejected      = errors.New("invoice_provider_rejected")
)

// Unconfigured is the default provider on installs that have not set up
// an external invoicing integration.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "unconfigured" }

func (Unconfigured) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	return nil, ErrProviderNotConfigured
}
