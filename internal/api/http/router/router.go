package router

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/internal/api/http/middleware"
	"github.com/medibook/medibook_backend/internal/push"
	"github.com/medibook/medibook_backend/internal/service/appointment"
	"github.com/medibook/medibook_backend/internal/service/auth"
	"github.com/medibook/medibook_backend/internal/service/doctor"
	"github.com/medibook/medibook_backend/internal/service/notification"
	"github.com/medibook/medibook_backend/internal/service/patient"
	"github.com/medibook/medibook_backend/internal/service/payment"
	"github.com/medibook/medibook_backend/internal/service/scheduling"
	"github.com/medibook/medibook_backend/internal/service/specialization"
	"github.com/medibook/medibook_backend/internal/service/user"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/database"
	"github.com/medibook/medibook_backend/pkg/observability"
	"github.com/medibook/medibook_backend/pkg/redis"
	"github.com/medibook/medibook_backend/pkg/token"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

// APIPrefix is where every REST route is mounted.
const APIPrefix = "/api"

type Params struct {
	fx.In

	Cfg               *config.Config
	Auth              authorize.IAuthorization
	Tokens            *token.Manager
	Sessions          redis.SessionStore
	Registry          *push.Registry
	Mongo             *database.DB            `optional:"true"`
	Redis             *goredis.Client         `optional:"true"`
	OTel              *observability.Provider `optional:"true"`
	UserSvc           user.Service
	AuthSvc           auth.Service
	DoctorSvc         doctor.Service
	PatientSvc        patient.Service
	SpecializationSvc specialization.Service
	SchedulingSvc     scheduling.Service
	AppointmentSvc    appointment.Service
	PaymentSvc        payment.Service
	NotificationSvc   notification.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

type permFunc func(authorize.Resource, authorize.Action) fiber.Handler

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.Tokens, r.p.Sessions)

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc)
	doctorH := handler.NewDoctorHandler(r.p.DoctorSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	specH := handler.NewSpecializationHandler(r.p.SpecializationSvc)
	scheduleH := handler.NewScheduleHandler(r.p.SchedulingSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	paymentH := handler.NewPaymentHandler(r.p.PaymentSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	pushH := handler.NewPushHandler(r.p.Registry, r.p.NotificationSvc,
		r.p.Cfg.Push.NotificationLimit, time.Duration(r.p.Cfg.Push.WriteWaitSeconds)*time.Second)

	api := app.Group(APIPrefix)

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, userH, authRequired, requirePerm)
	r.registerDirectoryRoutes(api, doctorH, patientH, specH, authRequired, requirePerm)
	r.registerScheduleRoutes(api, scheduleH, authRequired, requirePerm)
	r.registerAppointmentRoutes(api, appointmentH, authRequired, requirePerm)
	r.registerNotificationRoutes(api, notificationH, pushH, authRequired, requirePerm)
	r.registerPaymentRoutes(api, paymentH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if r.p.Mongo != nil && r.p.Mongo.Ping(c.Context()) != nil {
				return false
			}
			if r.p.Redis != nil && r.p.Redis.Ping(c.Context()).Err() != nil {
				return false
			}
			return true
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		if r.p.OTel != nil {
			app.Get(path, adaptor.HTTPHandler(r.p.OTel.MetricsHandler()))
		} else {
			app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
		}
	}
}
