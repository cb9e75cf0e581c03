package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/logs"
	"github.com/medibook/medibook_backend/pkg/momo"
	"github.com/medibook/medibook_backend/pkg/observability"
	"github.com/medibook/medibook_backend/pkg/util/codes"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type InitiateRequest struct {
	// Amount overrides the doctor's price when positive.
	Amount    int64
	OrderInfo string
}

// Gateway is the part of the MoMo client the service needs.
type Gateway interface {
	PartnerCode() string
	Create(ctx context.Context, p momo.Payment) (*momo.CreateResponse, error)
	VerifyIPN(n momo.IPN) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Initiate(ctx context.Context, actor authorize.Actor, appointmentID string, req InitiateRequest) (*momo.CreateResponse, error)
	Callback(ctx context.Context, ipn momo.IPN) (*repo.Payment, error)
	Status(ctx context.Context, actor authorize.Actor, appointmentID string) (*repo.Payment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type paymentService struct {
	db      *repo.Client
	gateway Gateway
	bus     events.Publisher
	metrics *observability.Metrics
	now     func() time.Time
}

func New(db *repo.Client, gateway Gateway, bus events.Publisher, metrics *observability.Metrics) Service {
	return &paymentService{db: db, gateway: gateway, bus: bus, metrics: metrics, now: time.Now}
}

// appointmentFor loads the appointment and checks the actor may pay for it.
func (s *paymentService) appointmentFor(ctx context.Context, actor authorize.Actor, id string) (*repo.Appointment, error) {
	a, err := s.db.Appointment.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if actor.IsAdmin() {
		return a, nil
	}
	p, err := s.db.Patient.GetByUser(ctx, actor.UserID.String())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if p.ID != a.PatientID {
		return nil, ErrForbidden
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Initiate
// ---------------------------------------------------------------------------

func (s *paymentService) Initiate(ctx context.Context, actor authorize.Actor, appointmentID string, req InitiateRequest) (*momo.CreateResponse, error) {
	a, err := s.appointmentFor(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == repo.StatusCanceled {
		return nil, ErrAppointmentClosed
	}

	amount := req.Amount
	if amount <= 0 {
		d, err := s.db.Doctor.Get(ctx, a.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("get doctor: %w", err)
		}
		amount = d.Price
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now().UTC()
	orderID, err := codes.OrderID(s.gateway.PartnerCode(), now)
	if err != nil {
		return nil, err
	}
	info := req.OrderInfo
	if info == "" {
		info = "pay with MoMo"
	}

	resp, err := s.gateway.Create(ctx, momo.Payment{
		OrderID:   orderID,
		RequestID: orderID,
		Amount:    amount,
		OrderInfo: info,
	})
	if err != nil {
		s.metrics.Payment(ctx, "gateway_error")
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	p := &repo.Payment{
		ID:            repo.NewID(),
		OrderID:       orderID,
		RequestID:     orderID,
		AppointmentID: a.ID,
		Amount:        amount,
		ResultCode:    resp.ResultCode,
		Message:       resp.Message,
		PayURL:        resp.PayURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.Payment.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}
	s.metrics.Payment(ctx, "initiated")
	logs.FromContext(ctx).Info("payment initiated", "order_id", orderID, "appointment_id", a.ID, "amount", amount)
	return resp, nil
}

// ---------------------------------------------------------------------------
// Callback
// ---------------------------------------------------------------------------

func (s *paymentService) Callback(ctx context.Context, ipn momo.IPN) (*repo.Payment, error) {
	if err := s.gateway.VerifyIPN(ipn); err != nil {
		s.metrics.Payment(ctx, "bad_signature")
		logs.FromContext(ctx).Warn("payment callback rejected", "order_id", ipn.OrderID, "error", err)
		return nil, ErrInvalidSignature
	}

	p, err := s.db.Payment.GetByOrderID(ctx, ipn.OrderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if ipn.Amount != p.Amount {
		return nil, ErrAmountMismatch
	}
	// gateways retry IPNs; a paid order stays paid
	if p.Status {
		return p, nil
	}

	p.ResultCode = ipn.ResultCode
	p.Message = ipn.Message
	p.UpdatedAt = s.now().UTC()
	if ipn.ResultCode == momo.ResultSuccess {
		p.Status = true
		p.TransID = ipn.TransID
	}
	if err := s.db.Payment.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	if !p.Status {
		s.metrics.Payment(ctx, "failed")
		logs.FromContext(ctx).Info("payment not completed", "order_id", p.OrderID, "result_code", ipn.ResultCode, "message", ipn.Message)
		return p, nil
	}

	s.metrics.Payment(ctx, "paid")
	if err := events.PublishJSON(ctx, s.bus, constants.SubjectPaymentReceived, events.PaymentEvent{
		OrderID:       p.OrderID,
		AppointmentID: p.AppointmentID,
		Amount:        p.Amount,
		TransID:       p.TransID,
	}); err != nil {
		logs.FromContext(ctx).Warn("publish payment event failed", "order_id", p.OrderID, "error", err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

func (s *paymentService) Status(ctx context.Context, actor authorize.Actor, appointmentID string) (*repo.Payment, error) {
	if _, err := s.appointmentFor(ctx, actor, appointmentID); err != nil {
		return nil, err
	}
	p, err := s.db.Payment.LatestByAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("latest payment: %w", err)
	}
	return p, nil
}
