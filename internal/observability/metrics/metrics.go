package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	sessionTransitions metric.Int64Counter
	transitionConflict metric.Int64Counter
	pricingResolved    metric.Int64Counter
	invoiceHandoffs    metric.Int64Counter
	lockBatchSessions  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "fleetwash"
	}
	meter := provider.Meter(name)

	sessionTransitions, err := meter.Int64Counter("fleetwash_session_transitions_total")
	if err != nil {
		return nil, err
	}
	transitionConflict, err := meter.Int64Counter("fleetwash_transition_conflicts_total")
	if err != nil {
		return nil, err
	}
	pricingResolved, err := meter.Int64Counter("fleetwash_pricing_resolutions_total")
	if err != nil {
		return nil, err
	}
	invoiceHandoffs, err := meter.Int64Counter("fleetwash_invoice_handoffs_total")
	if err != nil {
		return nil, err
	}
	lockBatchSessions, err := meter.Int64Counter("fleetwash_lock_batch_sessions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		sessionTransitions: sessionTransitions,
		transitionConflict: transitionConflict,
		pricingResolved:    pricingResolved,
		invoiceHandoffs:    invoiceHandoffs,
		lockBatchSessions:  lockBatchSessions,
	}, nil
}

// RecordTransition increments per-transition counts.
func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.sessionTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from_status", from),
		attribute.String("to_status", to),
	))
}

// RecordTransitionConflict increments optimistic-concurrency conflict counts.
func (m *Metrics) RecordTransitionConflict(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.transitionConflict.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordPricingResolved increments discount-resolution counts per tier.
func (m *Metrics) RecordPricingResolved(ctx context.Context, track string, percent int) {
	if m == nil {
		return
	}
	m.pricingResolved.Add(ctx, 1, metric.WithAttributes(
		attribute.String("track", track),
		attribute.Int("discount_percent", percent),
	))
}

// RecordInvoiceHandoff increments invoice hand-off counts per outcome.
func (m *Metrics) RecordInvoiceHandoff(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.invoiceHandoffs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

// RecordLockBatch adds processed session counts for a lock batch run.
func (m *Metrics) RecordLockBatch(ctx context.Context, locked, skipped int64) {
	if m == nil {
		return
	}
	m.lockBatchSessions.Add(ctx, locked, metric.WithAttributes(attribute.String("outcome", "locked")))
	if skipped > 0 {
		m.lockBatchSessions.Add(ctx, skipped, metric.WithAttributes(attribute.String("outcome", "skipped")))
	}
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
