package exporters

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	for _, name := range []string{Stdout, None, ""} {
		exp, err := NewTracingExporter(context.Background(), name, Options{Writer: &bytes.Buffer{}})
		if err != nil || exp == nil {
			t.Errorf("NewTracingExporter(%q) = %v, %v", name, exp, err)
		}
	}
}

func TestNewMetricsReader(t *testing.T) {
	for _, name := range []string{Stdout, None, "", Prometheus} {
		r, err := NewMetricsReader(context.Background(), name, Options{Writer: &bytes.Buffer{}})
		if err != nil || r == nil {
			t.Errorf("NewMetricsReader(%q) = %v, %v", name, r, err)
		}
	}
}

func TestUnknownExporter(t *testing.T) {
	if _, err := NewTracingExporter(context.Background(), "zipkin", Options{}); err == nil || !strings.Contains(err.Error(), "unknown exporter") {
		t.Errorf("NewTracingExporter(zipkin) error = %v", err)
	}
	if _, err := NewMetricsReader(context.Background(), "statsd", Options{}); err == nil {
		t.Error("NewMetricsReader(statsd) should fail")
	}
}

func TestOTLP_RequiresEndpoint(t *testing.T) {
	for _, k := range []string{"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"} {
		t.Setenv(k, "")
	}
	if _, err := NewTracingExporter(context.Background(), OTLP, Options{}); err == nil {
		t.Error("otlp tracing without endpoint should fail")
	}
	if _, err := NewMetricsReader(context.Background(), OTLP, Options{}); err == nil {
		t.Error("otlp metrics without endpoint should fail")
	}
}

func TestOTLP_ExplicitEndpoint(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), OTLP, Options{Endpoint: "localhost:4317"})
	if err != nil {
		t.Fatalf("NewTracingExporter(otlp) error = %v", err)
	}
	_ = exp.Shutdown(context.Background())
}

func TestValid(t *testing.T) {
	if !ValidTracing(OTLP) || ValidTracing(Prometheus) {
		t.Error("ValidTracing mismatch")
	}
	if !ValidMetrics(Prometheus) || ValidMetrics("jaeger") {
		t.Error("ValidMetrics mismatch")
	}
}
