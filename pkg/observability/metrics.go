package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/medibook/medibook_backend"

// Booking outcome labels
const (
	OutcomeBooked    = "booked"
	OutcomeDuplicate = "duplicate"
	OutcomeDailyCap  = "daily_limit"
	OutcomeCancelCap = "cancel_limit"
	OutcomeStarted   = "slot_started"
)

// Metrics are the domain instruments. A zero Metrics (or nil) is a no-op, so
// services can be built without telemetry in tests.
type Metrics struct {
	bookings     metric.Int64Counter
	transitions  metric.Int64Counter
	emailFailure metric.Int64Counter
	pushClients  metric.Int64UpDownCounter
	payments     metric.Int64Counter
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() *Metrics {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	m.bookings, _ = meter.Int64Counter("medibook_booking_attempts_total",
		metric.WithDescription("Appointment booking attempts by outcome"))
	m.transitions, _ = meter.Int64Counter("medibook_appointment_transitions_total",
		metric.WithDescription("Appointment status transitions"))
	m.emailFailure, _ = meter.Int64Counter("medibook_email_failures_total",
		metric.WithDescription("Notification emails that could not be delivered"))
	m.pushClients, _ = meter.Int64UpDownCounter("medibook_push_connections",
		metric.WithDescription("Open WebSocket push connections"))
	m.payments, _ = meter.Int64Counter("medibook_payments_total",
		metric.WithDescription("Payment gateway events by kind"))
	return m
}

func (m *Metrics) Booking(ctx context.Context, outcome string) {
	if m == nil || m.bookings == nil {
		return
	}
	m.bookings.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) Transition(ctx context.Context, status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) EmailFailed(ctx context.Context, kind string) {
	if m == nil || m.emailFailure == nil {
		return
	}
	m.emailFailure.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) PushConnections(ctx context.Context, delta int64) {
	if m == nil || m.pushClients == nil {
		return
	}
	m.pushClients.Add(ctx, delta)
}

func (m *Metrics) Payment(ctx context.Context, kind string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
