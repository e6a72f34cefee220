package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records stage executions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordStage(ctx context.Context, meta StageMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	total    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates stage instruments on meter. A nil meter uses the
// no-op provider.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("noop")
	}

	total, err := meter.Int64Counter(
		"recipeguard.stage.total",
		metric.WithDescription("Pipeline stage executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter(
		"recipeguard.stage.errors",
		metric.WithDescription("Pipeline stage failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"recipeguard.stage.duration_ms",
		metric.WithDescription("Pipeline stage duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &metricsImpl{total: total, errors: errs, duration: duration}, nil
}

func (m *metricsImpl) RecordStage(ctx context.Context, meta StageMeta, d time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.String("stage.name", meta.Name)}
	if meta.Component != "" {
		attrs = append(attrs, attribute.String("stage.component", meta.Component))
	}
	opt := metric.WithAttributes(attrs...)

	m.total.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(d.Microseconds())/1000, opt)
}
