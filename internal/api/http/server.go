package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/internal/api/http/middleware"
	"github.com/medibook/medibook_backend/internal/api/http/router"
	"github.com/medibook/medibook_backend/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client `optional:"true"`
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

// NewApp builds the fiber app with global middleware and every route.
func NewApp(cfg *config.Config, rdb *redis.Client, r *router.Router, tracing bool) *fiber.App {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	app := fiber.New(fiber.Config{
		AppName:      "medibook",
		ErrorHandler: handler.ErrorHandler,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	if tracing {
		app.Use(observability.FiberMiddleware())
	}

	configureGlobalMiddleware(app, cfg, rdb)

	r.Register(app)
	return app
}

func NewServer(p Params) *fiber.App {
	tracing := p.OTel != nil && p.Cfg.Observability.Tracing.Enabled
	app := NewApp(p.Cfg, p.Redis, p.Router, tracing)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			slog.Info("HTTP server listening", "addr", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.CORS.Enabled {
		origins := cfg.Server.CORS.AllowOrigins
		if len(origins) == 0 && cfg.Server.FrontendURI != "" {
			origins = []string{cfg.Server.FrontendURI}
		}
		app.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowCredentials: cfg.Server.CORS.AllowCredentials,
			MaxAge:           cfg.Server.CORS.MaxAgeSeconds,
		}))
	}

	if cfg.Server.Environment == "production" {
		app.Use(helmet.New())
		if rdb != nil {
			app.Use(middleware.NewLimiterWithRedis(rdb, cfg.Server.RateLimit))
		}
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${locals:requestId}] ${method} ${url} ${status} ${latency}\n",
	}))
}
