package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Authorization  AuthorizationConfig  `mapstructure:"authorization"`
	Booking        BookingConfig        `mapstructure:"booking"`
	Email          EmailConfig          `mapstructure:"email"`
	SMS            SMSConfig            `mapstructure:"sms"`
	Password       PasswordConfig       `mapstructure:"password"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	MoMo           MoMoConfig           `mapstructure:"momo"`
	Nats           NatsConfig           `mapstructure:"nats"`
	Push           PushConfig           `mapstructure:"push"`
}

type NatsConfig struct {
	// URL empty means the in-process bus is used (single instance deployments).
	URL string `mapstructure:"url" yaml:"url"`
}

type DatabaseConfig struct {
	URI                   string `mapstructure:"uri"`
	Name                  string `mapstructure:"name"`
	ConnectTimeoutSeconds int    `mapstructure:"connect_timeout_seconds"`
	MaxPoolSize           uint64 `mapstructure:"max_pool_size"`
	MinPoolSize           uint64 `mapstructure:"min_pool_size"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type RateLimitConfig struct {
	Max               int `mapstructure:"max"`
	ExpirationSeconds int `mapstructure:"expiration_seconds"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Environment    string          `mapstructure:"environment"`
	FrontendURI    string          `mapstructure:"frontend_uri"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Token TokenConfig `mapstructure:"token"`
	// SessionSecret seeds the PASETO local key when no explicit key is configured.
	SessionSecret     string `mapstructure:"session_secret"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes"`
}

type TokenConfig struct {
	Mode             string `mapstructure:"mode"` // jwt | local | public
	JWTSecret        string `mapstructure:"jwt_secret"`
	LocalKeyHex      string `mapstructure:"local_key_hex"`
	SecretKeyHex     string `mapstructure:"secret_key_hex"`
	PublicKeyHex     string `mapstructure:"public_key_hex"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
}

type AuthorizationConfig struct {
	EnableAudit bool `mapstructure:"enable_audit"`
}

type BookingConfig struct {
	// CutoffTimezone is the IANA zone the 07:30 / 13:30 slot cutoffs are read in.
	CutoffTimezone     string `mapstructure:"cutoff_timezone"`
	DailyLimit         int    `mapstructure:"daily_limit"`
	MaxSlotCancels     int    `mapstructure:"max_slot_cancels"`
	LockWindowHours    int    `mapstructure:"lock_window_hours"`
	LockTimeoutSeconds int    `mapstructure:"lock_timeout_seconds"`
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SMSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	SMSIR   SMSIRConfig `mapstructure:"smsir"`
}

type SMSIRConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SecretKey  string `mapstructure:"secret_key"`
	TemplateID string `mapstructure:"template_id"`
}

type PasswordConfig struct {
	Algorithm     string `mapstructure:"algorithm"`
	MemoryKiB     uint32 `mapstructure:"memory_kib"`
	Iterations    uint32 `mapstructure:"iterations"`
	Parallelism   uint8  `mapstructure:"parallelism"`
	SaltLength    uint32 `mapstructure:"salt_length"`
	KeyLength     uint32 `mapstructure:"key_length"`
	LowMemoryMode bool   `mapstructure:"low_memory_mode"`
	MinLength     int    `mapstructure:"min_length"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MoMoConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	PartnerCode    string `mapstructure:"partner_code"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	RedirectURL    string `mapstructure:"redirect_url"`
	IPNURL         string `mapstructure:"ipn_url"`
	RequestType    string `mapstructure:"request_type"`
	Lang           string `mapstructure:"lang"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PushConfig struct {
	SendBuffer        int `mapstructure:"send_buffer"`
	WriteWaitSeconds  int `mapstructure:"write_wait_seconds"`
	NotificationLimit int `mapstructure:"notification_limit"`
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.URI) == "" {
		errs = append(errs, errors.New("database.uri (MONGO_URI) is required"))
	}

	switch c.Authentication.Token.Mode {
	case "", "jwt":
		if c.Authentication.Token.JWTSecret == "" {
			errs = append(errs, errors.New("authentication.token.jwt_secret (JWT_SECRET) is required in jwt mode"))
		}
	case "local":
		if c.Authentication.Token.LocalKeyHex == "" && c.Authentication.SessionSecret == "" {
			errs = append(errs, errors.New("local token mode needs local_key_hex or SESSION_SECRET"))
		}
	case "public":
		if c.Authentication.Token.SecretKeyHex == "" && c.Authentication.Token.PublicKeyHex == "" {
			errs = append(errs, errors.New("public token mode needs secret_key_hex and/or public_key_hex"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown token mode %q", c.Authentication.Token.Mode))
	}

	if tz := c.Booking.CutoffTimezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			errs = append(errs, fmt.Errorf("booking.cutoff_timezone: %w", err))
		}
	}

	return errors.Join(errs...)
}
