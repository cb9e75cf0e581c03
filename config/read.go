package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/medibook/medibook_backend/pkg/constants"
)

var GlobalConf *Config

// legacyEnv maps the environment names used by existing deployments onto
// config keys. MEDIBOOK_* variables keep working for every key.
var legacyEnv = map[string][]string{
	"database.uri":                    {"MONGO_URI"},
	"authentication.token.jwt_secret": {"JWT_SECRET"},
	"authentication.session_secret":   {"SESSION_SECRET"},
	"email.smtp.username":             {"EMAIL_USER"},
	"email.smtp.password":             {"EMAIL_PASS", "EMAIL_PASSWORD"},
	"email.from":                      {"EMAIL_FROM", "EMAIL_USER"},
	"momo.access_key":                 {"MOMO_ACCESS_KEY"},
	"momo.secret_key":                 {"MOMO_SECRET_KEY"},
	"momo.partner_code":               {"MOMO_PARTNER_CODE"},
	"momo.ipn_url":                    {"IPNURL_MOMO"},
	"server.frontend_uri":             {"FRONTEND_URI"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.name", "medibook")
	v.SetDefault("database.connect_timeout_seconds", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.max", 60)
	v.SetDefault("server.rate_limit.expiration_seconds", 60)
	v.SetDefault("authentication.token.mode", "jwt")
	v.SetDefault("authentication.token.issuer", constants.AppName)
	v.SetDefault("authentication.token.audience", constants.AppName+"-web")
	v.SetDefault("authentication.token.access_ttl_minutes", 60)
	v.SetDefault("authentication.session_ttl_minutes", 60)
	v.SetDefault("authorization.enable_audit", true)
	v.SetDefault("booking.cutoff_timezone", "UTC")
	v.SetDefault("booking.daily_limit", 4)
	v.SetDefault("booking.max_slot_cancels", 2)
	v.SetDefault("booking.lock_window_hours", 24)
	v.SetDefault("booking.lock_timeout_seconds", 5)
	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 465)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout_seconds", 30)
	v.SetDefault("password.algorithm", "argon2id")
	v.SetDefault("password.memory_kib", 64*1024)
	v.SetDefault("password.iterations", 3)
	v.SetDefault("password.parallelism", 2)
	v.SetDefault("password.salt_length", 16)
	v.SetDefault("password.key_length", 32)
	v.SetDefault("password.min_length", 8)
	v.SetDefault("observability.service_name", constants.AppName)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output.stdout", true)
	v.SetDefault("momo.endpoint", "https://test-payment.momo.vn/v2/gateway/api")
	v.SetDefault("momo.partner_code", "MOMO")
	v.SetDefault("momo.request_type", "captureWallet")
	v.SetDefault("momo.lang", "vi")
	v.SetDefault("momo.timeout_seconds", 30)
	v.SetDefault("push.send_buffer", 16)
	v.SetDefault("push.write_wait_seconds", 10)
	v.SetDefault("push.notification_limit", 50)
}

func ReadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// e.g. MEDIBOOK_DATABASE_URI overrides database.uri
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	setDefaults(v)

	// The config file is optional when everything comes from the environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.Server.FrontendURI != "" {
		if config.MoMo.RedirectURL == "" {
			config.MoMo.RedirectURL = strings.TrimRight(config.Server.FrontendURI, "/") + "/payment/result"
		}
		if len(config.Server.CORS.AllowOrigins) == 0 {
			config.Server.CORS.AllowOrigins = []string{config.Server.FrontendURI}
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
