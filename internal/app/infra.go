package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/push"
	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/database"
	"github.com/medibook/medibook_backend/pkg/email"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/momo"
	"github.com/medibook/medibook_backend/pkg/observability"
	"github.com/medibook/medibook_backend/pkg/redis"
	"github.com/medibook/medibook_backend/pkg/sms"
	"github.com/medibook/medibook_backend/pkg/token"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideMongo),
	fx.Provide(ProvideRepo),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideLocker),
	fx.Provide(ProvideSessionStore),
	fx.Provide(ProvideTokenManager),
	fx.Provide(ProvidePasswordHasher),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideMoMoClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideMetrics),
	fx.Provide(ProvideEventBus),
	fx.Provide(ProvidePushRegistry),
)

func ProvideMongo(lc fx.Lifecycle, cfg *config.Config) (*database.DB, error) {
	db, err := database.New(context.Background(), database.FromCentralConfig(cfg.Database))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing MongoDB connection")
			return db.Close(ctx)
		},
	})
	return db, nil
}

func ProvideRepo(db *database.DB) *repo.Client {
	return repo.NewMongo(db.Database())
}

// ProvideRedis returns nil when no address is configured; locks and sessions
// then stay in process, which is only correct for a single instance.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*goredis.Client, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("redis not configured, using in-process locks and sessions")
		return nil, nil
	}
	rdb, err := redis.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideLocker(rdb *goredis.Client, cfg *config.Config) redis.Locker {
	if rdb == nil {
		return redis.NewLocalLocker()
	}
	ttl := time.Duration(cfg.Booking.LockTimeoutSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return redis.NewLocker(rdb, ttl)
}

func ProvideSessionStore(rdb *goredis.Client) redis.SessionStore {
	if rdb == nil {
		return redis.NewMemorySessionStore()
	}
	return redis.NewSessionStore(rdb)
}

func ProvideTokenManager(cfg *config.Config) (*token.Manager, error) {
	return token.NewFromConfig(cfg)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvideAuthorization(cfg *config.Config) (authorize.IAuthorization, error) {
	return authorize.New(context.Background(), authorize.FromCentralConfig(cfg.Authorization))
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg)
}

func ProvideSMSClient(cfg *config.Config) (sms.Sender, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideMoMoClient(cfg *config.Config) *momo.Client {
	return momo.New(momo.FromCentralConfig(cfg.MoMo))
}

// ProvideEventBus connects to NATS when a URL is configured and falls back
// to the in-process bus otherwise.
func ProvideEventBus(lc fx.Lifecycle, cfg *config.Config) (events.Bus, error) {
	var bus events.Bus
	if cfg.Nats.URL == "" {
		slog.Info("nats not configured, using in-process event bus")
		bus = events.NewMemory()
	} else {
		nc, err := nats.Connect(cfg.Nats.URL, nats.Name(constants.AppName))
		if err != nil {
			return nil, err
		}
		bus = events.NewNATS(nc)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing event bus")
			return bus.Close()
		},
	})
	return bus, nil
}

func ProvidePushRegistry(cfg *config.Config, metrics *observability.Metrics) *push.Registry {
	return push.NewRegistry(cfg.Push.SendBuffer, metrics)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideMetrics depends on the provider so instruments bind to the
// installed meter provider rather than the no-op default.
func ProvideMetrics(_ *observability.Provider) *observability.Metrics {
	return observability.NewMetrics()
}
