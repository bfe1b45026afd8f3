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

// Metrics exposes quote-level instruments.
type Metrics struct {
	quoteSaves        metric.Int64Counter
	quoteRecomputes   metric.Int64Counter
	totalsMismatches  metric.Int64Counter
	modeOverrides     metric.Int64Counter
	saveLockConflicts metric.Int64Counter
	quotesExpired     metric.Int64Counter
	recomputeDuration metric.Float64Histogram
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
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New configures the quote instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "robobooks"
	}
	meter := provider.Meter(name)

	quoteSaves, err := meter.Int64Counter("robobooks_quote_saves_total")
	if err != nil {
		return nil, err
	}
	quoteRecomputes, err := meter.Int64Counter("robobooks_quote_recomputes_total")
	if err != nil {
		return nil, err
	}
	totalsMismatches, err := meter.Int64Counter("robobooks_quote_totals_mismatch_total")
	if err != nil {
		return nil, err
	}
	modeOverrides, err := meter.Int64Counter("robobooks_quote_tax_mode_overrides_total")
	if err != nil {
		return nil, err
	}
	saveLockConflicts, err := meter.Int64Counter("robobooks_quote_save_lock_conflicts_total")
	if err != nil {
		return nil, err
	}
	quotesExpired, err := meter.Int64Counter("robobooks_quotes_expired_total")
	if err != nil {
		return nil, err
	}
	recomputeDuration, err := meter.Float64Histogram("robobooks_quote_recompute_duration_ms", metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quoteSaves:        quoteSaves,
		quoteRecomputes:   quoteRecomputes,
		totalsMismatches:  totalsMismatches,
		modeOverrides:     modeOverrides,
		saveLockConflicts: saveLockConflicts,
		quotesExpired:     quotesExpired,
		recomputeDuration: recomputeDuration,
	}, nil
}

// RecordQuoteSave counts a persisted quote create or update.
func (m *Metrics) RecordQuoteSave(ctx context.Context, operation, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.quoteSaves.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRecompute counts an engine run and its duration.
func (m *Metrics) RecordRecompute(ctx context.Context, operation string, intraState bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	supply := "inter_state"
	if intraState {
		supply = "intra_state"
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("supply", supply),
	)
	m.quoteRecomputes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.recomputeDuration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
}

// RecordTotalsMismatch counts a rejected save whose client totals disagreed.
func (m *Metrics) RecordTotalsMismatch(ctx context.Context, field string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("field", strings.TrimSpace(field)))
	m.totalsMismatches.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordModeOverrides counts lines whose GST/IGST choice was replaced.
func (m *Metrics) RecordModeOverrides(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.modeOverrides.Add(ctx, int64(count))
}

// RecordSaveLockConflict counts a save rejected by the quote lock.
func (m *Metrics) RecordSaveLockConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.saveLockConflicts.Add(ctx, 1)
}

// RecordQuotesExpired counts quotes moved to EXPIRED by the scheduler.
func (m *Metrics) RecordQuotesExpired(ctx context.Context, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.quotesExpired.Add(ctx, count)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":      {},
	"operation":   {},
	"status":      {},
	"status_code": {},
	"route":       {},
	"method":      {},
	"supply":      {},
	"field":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
