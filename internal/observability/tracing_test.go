package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
)

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("DAD_TRACING_ENABLED", "TRUE")
	t.Setenv("DAD_TRACING_EXPORTER", "OTLP")
	t.Setenv("DAD_TRACING_ENDPOINT", "collector:4317")
	t.Setenv("DAD_TRACING_SAMPLE_RATIO", "0.25")

	cfg := TracingConfigFromEnv(DefaultTracingConfig())
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.Endpoint != "collector:4317" || cfg.SampleRatio != 0.25 {
		t.Fatalf("TracingConfigFromEnv = %+v", cfg)
	}
	if cfg.ServiceName != "docking-display" {
		t.Fatalf("service name = %q, want default", cfg.ServiceName)
	}
}

func TestTracingConfigFromEnvIgnoresBadRatio(t *testing.T) {
	t.Setenv("DAD_TRACING_SAMPLE_RATIO", "1.5")
	if cfg := TracingConfigFromEnv(DefaultTracingConfig()); cfg.SampleRatio != 1 {
		t.Fatalf("SampleRatio = %v, want 1", cfg.SampleRatio)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), DefaultTracingConfig(), logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Exporter = "zipkin"
	if _, err := InitTracing(context.Background(), cfg, logging.Noop()); err == nil {
		t.Fatalf("expected error for unknown exporter")
	}
}

func TestResourceAttributesCarrySessionID(t *testing.T) {
	cfg := DefaultTracingConfig()

	attrs := attribute.NewSet(resourceAttributes(context.Background(), cfg)...)
	if _, ok := attrs.Value("docking.session_id"); ok {
		t.Fatalf("session attribute set without a session")
	}

	ctx := logging.ContextWithSessionID(context.Background(), "sess-42")
	attrs = attribute.NewSet(resourceAttributes(ctx, cfg)...)
	if v, ok := attrs.Value("docking.session_id"); !ok || v.AsString() != "sess-42" {
		t.Fatalf("docking.session_id = %v, %v; want sess-42", v.AsString(), ok)
	}
	if v, _ := attrs.Value("service.name"); v.AsString() != "docking-display" {
		t.Fatalf("service.name = %q", v.AsString())
	}
}

func TestShutdownWithTimeoutBoundsFlush(t *testing.T) {
	var hadDeadline bool
	ShutdownWithTimeout(context.Background(), func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return errors.New("flush failed")
	}, nil)
	if !hadDeadline {
		t.Fatalf("shutdown context has no deadline")
	}
	ShutdownWithTimeout(context.Background(), nil, nil)
}
