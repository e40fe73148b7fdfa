package observability

import (
	"context"
	"testing"

	"github.com/linktrack/linktrack/internal/logger"
)

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	// All recording methods must be safe when telemetry is disabled.
	m.RecordLinkCheck(ctx, true, false)
	m.RecordLinkCheck(ctx, false, true)
	m.RecordUpdatesSent(ctx, 3)
}

func TestNewMetricsDisabledProvider(t *testing.T) {
	m, err := NewMetrics(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Error("disabled provider must yield nil metrics")
	}
}

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false}, "test", logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Error("disabled config must yield nil provider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil provider: %v", err)
	}
}
