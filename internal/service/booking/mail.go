package booking

import (
	"context"
	"errors"

	"github.com/medibook/medibook_backend/pkg/email"
	"github.com/medibook/medibook_backend/pkg/logs"
	"github.com/medibook/medibook_backend/pkg/observability"
)

// Mail sends the appointment emails. Delivery failures are logged and
// counted; they never fail the request that triggered them.
type Mail struct {
	Mailer  email.Mailer
	AppName string
	BaseURL string
	Metrics *observability.Metrics
}

// Data pre-fills the branding fields of a template payload.
func (m Mail) Data() email.AppointmentEmailData {
	return email.AppointmentEmailData{AppName: m.AppName, BaseURL: m.BaseURL}
}

// Send delivers msg and reports whether it went out.
func (m Mail) Send(ctx context.Context, kind string, msg email.Message) bool {
	if m.Mailer == nil || len(msg.To) == 0 || msg.To[0] == "" {
		return false
	}
	err := m.Mailer.Send(ctx, msg)
	if err == nil {
		return true
	}
	if errors.Is(err, email.ErrDisabled) {
		logs.FromContext(ctx).Debug("email disabled, skipped", "kind", kind)
		return false
	}
	logs.FromContext(ctx).Warn("appointment email failed", "kind", kind, "to", msg.To[0], "error", err)
	m.Metrics.EmailFailed(ctx, kind)
	return false
}
