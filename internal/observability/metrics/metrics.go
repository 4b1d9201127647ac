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

// Metrics exposes diagnostic instruments.
type Metrics struct {
	stageResolutions  metric.Int64Counter
	reportsGenerated  metric.Int64Counter
	flaggedMetrics    metric.Int64Counter
	coercionFailures  metric.Int64Counter
	exportRateLimited metric.Int64Counter
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
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the diagnostic instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tractionlens"
	}
	meter := provider.Meter(name)

	stageResolutions, err := meter.Int64Counter("tractionlens_stage_resolutions_total")
	if err != nil {
		return nil, err
	}
	reportsGenerated, err := meter.Int64Counter("tractionlens_reports_generated_total")
	if err != nil {
		return nil, err
	}
	flaggedMetrics, err := meter.Int64Counter("tractionlens_flagged_metrics_total")
	if err != nil {
		return nil, err
	}
	coercionFailures, err := meter.Int64Counter("tractionlens_value_coercion_failures_total")
	if err != nil {
		return nil, err
	}
	exportRateLimited, err := meter.Int64Counter("tractionlens_export_rate_limited_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		stageResolutions:  stageResolutions,
		reportsGenerated:  reportsGenerated,
		flaggedMetrics:    flaggedMetrics,
		coercionFailures:  coercionFailures,
		exportRateLimited: exportRateLimited,
	}, nil
}

// RecordStageResolution counts growth stage lookups by outcome.
func (m *Metrics) RecordStageResolution(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.stageResolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReportGenerated counts compiled or exported reports by format.
func (m *Metrics) RecordReportGenerated(ctx context.Context, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("format", strings.TrimSpace(format)))
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordFlaggedMetric(ctx context.Context, pillar string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("pillar", strings.TrimSpace(pillar)))
	m.flaggedMetrics.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordCoercionFailure(ctx context.Context, pillar string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("pillar", strings.TrimSpace(pillar)))
	m.coercionFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordExportRateLimited(ctx context.Context, format, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("format", strings.TrimSpace(format)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.exportRateLimited.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"outcome": {},
	"format":  {},
	"pillar":  {},
	"reason":  {},
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
