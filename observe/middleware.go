package observe

import (
	"context"
	"time"
)

// StageFunc is one unit of pipeline work.
type StageFunc func(ctx context.Context) error

// Middleware wraps stages with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: errors from the stage are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// MiddlewareFromObserver builds a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger { return m.logger }

// Run executes fn as the stage described by meta. Extra fields are added to
// the log line.
func (m *Middleware) Run(ctx context.Context, meta StageMeta, fn StageFunc, fields ...Field) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordStage(ctx, meta, duration, err)

	log := m.logger.WithStage(meta)
	fields = append(fields, F("duration_ms", float64(duration.Microseconds())/1000))
	if err != nil {
		log.Warn(ctx, "stage failed", append(fields, F("error", err))...)
	} else {
		log.Debug(ctx, "stage completed", fields...)
	}
	return err
}
