package observability

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medibook/medibook_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	c := &config.Config{}
	c.Server.Environment = "production"
	c.Observability.ServiceName = "medibook"
	c.Observability.Tracing.OTLPEndpoint = "otel:4318"

	t.Run("tracing disabled drops endpoint", func(t *testing.T) {
		cfg := FromCentralConfig(c)
		if cfg.OTLPEndpoint != "" {
			t.Errorf("endpoint = %q, want empty", cfg.OTLPEndpoint)
		}
		if cfg.MetricsPath != "/metrics" {
			t.Errorf("metrics path = %q", cfg.MetricsPath)
		}
		if cfg.Environment != "production" {
			t.Errorf("environment = %q", cfg.Environment)
		}
	})

	t.Run("tracing enabled keeps endpoint", func(t *testing.T) {
		c.Observability.Tracing.Enabled = true
		if got := FromCentralConfig(c).OTLPEndpoint; got != "otel:4318" {
			t.Errorf("endpoint = %q", got)
		}
	})
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.Booking(ctx, OutcomeBooked)
	m.Transition(ctx, "confirmed")
	m.EmailFailed(ctx, "cancel")
	m.PushConnections(ctx, 1)
	m.Payment(ctx, "ipn")
}

func TestMetricsExposedOnRegistry(t *testing.T) {
	ctx := context.Background()
	p, err := InitTelemetry(ctx, Config{ServiceName: "medibook-test"})
	if err != nil {
		t.Fatalf("InitTelemetry: %v", err)
	}
	defer p.Shutdown(ctx)

	m := NewMetrics()
	m.Booking(ctx, OutcomeDuplicate)

	rec := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "medibook_booking_attempts_total") {
		t.Error("booking counter missing from exposition")
	}
}
