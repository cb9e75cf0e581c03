package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/servicetest"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/momo"
)

type fixture struct {
	db       *repo.Client
	bus      *events.Recorder
	client   *momo.Client
	svc      Service
	calls    *atomic.Int32
	appt     *repo.Appointment
	pActor   authorize.Actor
	stranger authorize.Actor
}

// gateway answers /create like MoMo does; resultCode lets a test force a refusal.
func gateway(t *testing.T, resultCode int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req momo.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode create request: %v", err)
		}
		if req.Signature == "" || req.RequestType != "captureWallet" {
			t.Errorf("unsigned or wrong request type: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(momo.CreateResponse{
			PartnerCode: req.PartnerCode, OrderID: req.OrderID, RequestID: req.RequestID,
			Amount: req.Amount, ResultCode: resultCode, Message: "Successful.",
			PayURL: "https://pay.example/" + req.OrderID,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T, resultCode int) *fixture {
	t.Helper()
	calls := &atomic.Int32{}
	srv := gateway(t, resultCode, calls)
	client := momo.New(momo.Config{
		Endpoint: srv.URL, PartnerCode: "MOMO", AccessKey: "F8BBA842ECF85",
		SecretKey: "K951B6PE1waDMi640xX08PD3vg6EkVlz", RequestType: "captureWallet",
		Lang: "vi", Timeout: 5 * time.Second,
	})

	f := &fixture{db: servicetest.NewDB(), bus: &events.Recorder{}, client: client, calls: calls}
	f.svc = New(f.db, client, f.bus, nil)

	patient, pUser := servicetest.SeedPatient(t, f.db, "Pat Payer")
	_, otherUser := servicetest.SeedPatient(t, f.db, "Other Patient")
	doctor, _ := servicetest.SeedDoctor(t, f.db, "Dr Fee")
	f.pActor = servicetest.Actor(t, pUser, authorize.RolePatient)
	f.stranger = servicetest.Actor(t, otherUser, authorize.RolePatient)

	now := time.Now().UTC()
	f.appt = &repo.Appointment{
		ID: repo.NewID(), PatientID: patient.ID, DoctorID: doctor.ID,
		WorkDate: repo.DayStart(now.Add(72 * time.Hour)), WorkShift: repo.ShiftMorning,
		Status: repo.StatusPending, CreatedAt: now, UpdatedAt: now,
	}
	f.appt.SyncActive()
	if err := f.db.Appointment.Create(context.Background(), f.appt); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) ipn(p *repo.Payment, resultCode int) momo.IPN {
	n := momo.IPN{
		PartnerCode: "MOMO", OrderID: p.OrderID, RequestID: p.RequestID, Amount: p.Amount,
		OrderInfo: "pay with MoMo", OrderType: "momo_wallet", TransID: 4088878653,
		ResultCode: resultCode, Message: "Successful.", PayType: "qr", ResponseTime: 1721720663942,
	}
	n.Signature = f.client.SignIPN(n)
	return n
}

func TestInitiateUsesDoctorPrice(t *testing.T) {
	f := setup(t, momo.ResultSuccess)
	ctx := context.Background()

	resp, err := f.svc.Initiate(ctx, f.pActor, f.appt.ID, InitiateRequest{})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if resp.PayURL == "" || resp.Amount != 300000 {
		t.Errorf("response = %+v", resp)
	}

	p, err := f.db.Payment.GetByOrderID(ctx, resp.OrderID)
	if err != nil {
		t.Fatalf("stored payment: %v", err)
	}
	if p.Status || p.AppointmentID != f.appt.ID || p.Amount != 300000 || p.PayURL != resp.PayURL {
		t.Errorf("payment = %+v", p)
	}
}

func TestInitiateRejections(t *testing.T) {
	tests := []struct {
		name    string
		prep    func(f *fixture) (authorize.Actor, string)
		wantErr error
	}{
		{"unknown appointment", func(f *fixture) (authorize.Actor, string) { return f.pActor, repo.NewID() }, ErrAppointmentNotFound},
		{"someone else's appointment", func(f *fixture) (authorize.Actor, string) { return f.stranger, f.appt.ID }, ErrForbidden},
		{"canceled appointment", func(f *fixture) (authorize.Actor, string) {
			f.appt.Status = repo.StatusCanceled
			f.appt.SyncActive()
			_ = f.db.Appointment.Update(context.Background(), f.appt)
			return f.pActor, f.appt.ID
		}, ErrAppointmentClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, momo.ResultSuccess)
			actor, id := tt.prep(f)
			if _, err := f.svc.Initiate(context.Background(), actor, id, InitiateRequest{}); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if f.calls.Load() != 0 {
				t.Error("gateway must not be called")
			}
		})
	}
}

func TestInitiateGatewayRefusal(t *testing.T) {
	f := setup(t, 1006)
	_, err := f.svc.Initiate(context.Background(), f.pActor, f.appt.ID, InitiateRequest{Amount: 50000})
	if !errors.Is(err, ErrGatewayFailure) {
		t.Fatalf("err = %v, want ErrGatewayFailure", err)
	}
	if _, err := f.db.Payment.LatestByAppointment(context.Background(), f.appt.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Error("refused order must not be stored")
	}
}

func TestCallbackMarksPaid(t *testing.T) {
	f := setup(t, momo.ResultSuccess)
	ctx := context.Background()
	resp, err := f.svc.Initiate(ctx, f.pActor, f.appt.ID, InitiateRequest{Amount: 150000})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := f.db.Payment.GetByOrderID(ctx, resp.OrderID)

	got, err := f.svc.Callback(ctx, f.ipn(p, momo.ResultSuccess))
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if !got.Status || got.TransID != 4088878653 {
		t.Errorf("payment = %+v", got)
	}

	var ev events.PaymentEvent
	if !f.bus.Decode(constants.SubjectPaymentReceived, &ev) || ev.OrderID != p.OrderID || ev.Amount != 150000 {
		t.Errorf("payment event = %+v", ev)
	}

	// a retried IPN is accepted without a second event
	if _, err := f.svc.Callback(ctx, f.ipn(p, momo.ResultSuccess)); err != nil {
		t.Errorf("retry err = %v", err)
	}
	if n := len(f.bus.Subjects(constants.SubjectPaymentReceived)); n != 1 {
		t.Errorf("published %d payment events, want 1", n)
	}

	st, err := f.svc.Status(ctx, f.pActor, f.appt.ID)
	if err != nil || !st.Status {
		t.Errorf("Status = %+v, %v", st, err)
	}
}

func TestCallbackFailures(t *testing.T) {
	f := setup(t, momo.ResultSuccess)
	ctx := context.Background()
	resp, err := f.svc.Initiate(ctx, f.pActor, f.appt.ID, InitiateRequest{})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := f.db.Payment.GetByOrderID(ctx, resp.OrderID)

	tampered := f.ipn(p, momo.ResultSuccess)
	tampered.Amount = 1
	if _, err := f.svc.Callback(ctx, tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("tampered err = %v", err)
	}

	cheap := f.ipn(p, momo.ResultSuccess)
	cheap.Amount = 1
	cheap.Signature = f.client.SignIPN(cheap)
	if _, err := f.svc.Callback(ctx, cheap); !errors.Is(err, ErrAmountMismatch) {
		t.Errorf("amount mismatch err = %v", err)
	}

	unknown := f.ipn(&repo.Payment{OrderID: "MOMO-missing", RequestID: "x", Amount: 10}, momo.ResultSuccess)
	if _, err := f.svc.Callback(ctx, unknown); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("unknown order err = %v", err)
	}

	got, err := f.svc.Callback(ctx, f.ipn(p, 1006))
	if err != nil {
		t.Fatalf("declined callback: %v", err)
	}
	if got.Status || got.ResultCode != 1006 {
		t.Errorf("declined payment = %+v", got)
	}
	if len(f.bus.Messages()) != 0 {
		t.Error("no event expected for unpaid orders")
	}
}

func TestStatus(t *testing.T) {
	f := setup(t, momo.ResultSuccess)
	ctx := context.Background()

	if _, err := f.svc.Status(ctx, f.pActor, f.appt.ID); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("no payment err = %v", err)
	}
	if _, err := f.svc.Initiate(ctx, f.pActor, f.appt.ID, InitiateRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Status(ctx, f.stranger, f.appt.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger err = %v", err)
	}
	if p, err := f.svc.Status(ctx, servicetest.AdminActor(), f.appt.ID); err != nil || p.Status {
		t.Errorf("admin Status = %+v, %v", p, err)
	}
}
