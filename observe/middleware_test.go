package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type harness struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
	mw     *Middleware
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	logs := &bytes.Buffer{}
	return &harness{
		spans:  spans,
		reader: reader,
		logs:   logs,
		mw:     NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", logs)),
	}
}

func (h *harness) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := h.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			var total int64
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMiddleware_Success(t *testing.T) {
	h := newHarness(t)
	meta := StageMeta{Name: StageCache, Component: "cache"}

	if err := h.mw.Run(context.Background(), meta, func(context.Context) error { return nil }, F("hit", true)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ended := h.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("got %d spans, want 1", len(ended))
	}
	if ended[0].Name() != "recipeguard.cache" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", ended[0].Status().Code)
	}
	if got := h.counter(t, "recipeguard.stage.total"); got != 1 {
		t.Errorf("stage.total = %d, want 1", got)
	}
	if got := h.counter(t, "recipeguard.stage.errors"); got != 0 {
		t.Errorf("stage.errors = %d, want 0", got)
	}

	line := decodeLines(t, h.logs)[0]
	if line["msg"] != "stage completed" || line["hit"] != true || line["stage"] != StageCache {
		t.Errorf("log line = %v", line)
	}
}

func TestMiddleware_Error(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("backend down")

	err := h.mw.Run(context.Background(), StageMeta{Name: StageGenerate}, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}

	span := h.spans.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", span.Status().Code)
	}
	var flagged bool
	for _, a := range span.Attributes() {
		if a.Key == attribute.Key("stage.error") && a.Value.AsBool() {
			flagged = true
		}
	}
	if !flagged {
		t.Error("span should carry stage.error=true")
	}
	if got := h.counter(t, "recipeguard.stage.errors"); got != 1 {
		t.Errorf("stage.errors = %d, want 1", got)
	}
	line := decodeLines(t, h.logs)[0]
	if line["level"] != "warn" || line["error"] != "backend down" {
		t.Errorf("log line = %v", line)
	}
}

func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	h := newHarness(t)
	_ = h.mw.Run(context.Background(), StageMeta{Name: StageAnalyze}, func(ctx context.Context) error {
		return h.mw.Run(ctx, StageMeta{Name: StageInput}, func(context.Context) error { return nil })
	})

	ended := h.spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("got %d spans, want 2", len(ended))
	}
	child, parent := ended[0], ended[1]
	if child.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("inner stage span should be a child of the outer span")
	}
}

func TestNewMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	if err := mw.Run(context.Background(), StageMeta{Name: "x"}, func(context.Context) error { return nil }); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("MiddlewareFromObserver(nil) error = %v, want ErrNilObserver", err)
	}
	mw, err := MiddlewareFromObserver(Noop())
	if err != nil || mw == nil {
		t.Fatalf("MiddlewareFromObserver(Noop()) = %v, %v", mw, err)
	}
}

func TestStageMeta(t *testing.T) {
	if got := (StageMeta{Name: StageLimit}).SpanName(); got != "recipeguard.rate_limit" {
		t.Errorf("SpanName() = %q", got)
	}
	if err := (StageMeta{}).Validate(); !errors.Is(err, ErrMissingStageName) {
		t.Errorf("Validate() = %v, want ErrMissingStageName", err)
	}
}
