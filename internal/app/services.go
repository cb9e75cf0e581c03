package app

import (
	"go.uber.org/fx"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/appointment"
	"github.com/medibook/medibook_backend/internal/service/auth"
	"github.com/medibook/medibook_backend/internal/service/booking"
	"github.com/medibook/medibook_backend/internal/service/doctor"
	"github.com/medibook/medibook_backend/internal/service/notification"
	"github.com/medibook/medibook_backend/internal/service/patient"
	"github.com/medibook/medibook_backend/internal/service/payment"
	"github.com/medibook/medibook_backend/internal/service/scheduling"
	"github.com/medibook/medibook_backend/internal/service/specialization"
	"github.com/medibook/medibook_backend/internal/service/user"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/email"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/momo"
	"github.com/medibook/medibook_backend/pkg/observability"
	"github.com/medibook/medibook_backend/pkg/redis"
	"github.com/medibook/medibook_backend/pkg/token"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideBookingPolicy,
		ProvideBookingMail,
		ProvideUserService,
		ProvideAuthService,
		ProvideDoctorService,
		ProvidePatientService,
		ProvideSpecializationService,
		ProvideNotificationService,
		ProvideSchedulingService,
		ProvideAppointmentService,
		ProvidePaymentService,
	),
)

func ProvideBookingPolicy(cfg *config.Config) booking.Policy {
	return booking.PolicyFromConfig(cfg)
}

func ProvideBookingMail(cfg *config.Config, mailer *email.Client, metrics *observability.Metrics) booking.Mail {
	return booking.Mail{
		Mailer:  mailer,
		AppName: constants.AppName,
		BaseURL: cfg.Server.FrontendURI,
		Metrics: metrics,
	}
}

func ProvideUserService(db *repo.Client, hasher *password.Hasher) user.Service {
	return user.New(db, hasher)
}

func ProvideAuthService(db *repo.Client, sessions redis.SessionStore, tokens *token.Manager, hasher *password.Hasher) auth.Service {
	return auth.New(db, sessions, tokens, hasher)
}

func ProvideDoctorService(db *repo.Client, hasher *password.Hasher, users user.Service) doctor.Service {
	return doctor.New(db, hasher, users)
}

func ProvidePatientService(db *repo.Client, hasher *password.Hasher, users user.Service) patient.Service {
	return patient.New(db, hasher, users)
}

func ProvideSpecializationService(db *repo.Client) specialization.Service {
	return specialization.New(db)
}

func ProvideNotificationService(db *repo.Client, bus events.Bus) notification.Service {
	return notification.New(db, bus)
}

func ProvideSchedulingService(db *repo.Client, notifier notification.Service, mail booking.Mail, policy booking.Policy) scheduling.Service {
	return scheduling.New(db, notifier, mail, policy)
}

func ProvideAppointmentService(
	db *repo.Client,
	locker redis.Locker,
	notifier notification.Service,
	bus events.Bus,
	mail booking.Mail,
	policy booking.Policy,
) appointment.Service {
	return appointment.New(db, locker, notifier, bus, mail, policy)
}

func ProvidePaymentService(db *repo.Client, gateway *momo.Client, bus events.Bus, metrics *observability.Metrics) payment.Service {
	return payment.New(db, gateway, bus, metrics)
}
