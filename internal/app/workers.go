package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.uber.org/fx"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/push"
	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/notification"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/sms"
)

// WorkerModule registers all event bus workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Bus      events.Bus
	DB       *repo.Client
	NotifSvc notification.Service
	Registry *push.Registry
	SMS      sms.Sender
}

func RegisterWorkers(p WorkerParams) {
	var subs []events.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s, err := startPushWorker(p.Bus, p.NotifSvc, p.Registry, p.Cfg.Push.NotificationLimit)
			if err != nil {
				return err
			}
			subs = append(subs, s)

			smsSubs, err := startSMSWorker(p.Bus, p.DB, p.SMS)
			if err != nil {
				return err
			}
			subs = append(subs, smsSubs...)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, s := range subs {
				if err := s.Unsubscribe(); err != nil {
					slog.Warn("worker unsubscribe failed", "error", err)
				}
			}
			p.Registry.Close()
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// push_worker
// ---------------------------------------------------------------------------

// startPushWorker sends the fresh unread snapshot to a user's open sockets
// whenever one of their notifications changes.
func startPushWorker(bus events.Bus, notif notification.Service, reg *push.Registry, limit int) (events.Subscription, error) {
	return bus.Subscribe(constants.SubjectNotificationChanged+".*", func(ctx context.Context, m events.Message) {
		userID := events.LastToken(m.Subject)
		if reg.Count(userID) == 0 {
			return
		}
		snap, err := notif.Snapshot(ctx, userID, limit)
		if err != nil {
			slog.Warn("push_worker: snapshot failed", "user_id", userID, "error", err)
			return
		}
		reg.Push(userID, snap)
	})
}

// ---------------------------------------------------------------------------
// sms_worker
// ---------------------------------------------------------------------------

func startSMSWorker(bus events.Bus, db *repo.Client, sender sms.Sender) ([]events.Subscription, error) {
	if !sender.IsEnabled() {
		slog.Debug("sms_worker: sms disabled, not subscribing")
		return nil, nil
	}

	subjects := []string{
		constants.SubjectAppointmentCreated,
		constants.SubjectAppointmentUpdated,
		constants.SubjectAppointmentCanceled,
	}
	subs := make([]events.Subscription, 0, len(subjects))
	for _, subject := range subjects {
		s, err := bus.Subscribe(subject, func(ctx context.Context, m events.Message) {
			var ev events.AppointmentEvent
			if err := json.Unmarshal(m.Data, &ev); err != nil {
				slog.Warn("sms_worker: bad payload", "subject", m.Subject, "error", err)
				return
			}
			sendAppointmentSMS(ctx, db, sender, ev)
		})
		if err != nil {
			for _, done := range subs {
				_ = done.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}

func sendAppointmentSMS(ctx context.Context, db *repo.Client, sender sms.Sender, ev events.AppointmentEvent) {
	u, err := db.User.Get(ctx, ev.PatientUserID)
	if err != nil {
		slog.Warn("sms_worker: patient user not found", "user_id", ev.PatientUserID, "error", err)
		return
	}
	if u.Phone == "" {
		return
	}
	if err := sender.SendAppointmentNotice(ctx, sms.Notice{
		Phone:  u.Phone,
		Name:   u.Name,
		Date:   ev.WorkDate.Format("2006-01-02"),
		Shift:  ev.WorkShift,
		Status: ev.Status,
	}); err != nil {
		slog.Warn("sms_worker: send failed", "appointment_id", ev.AppointmentID, "error", err)
	}
}
