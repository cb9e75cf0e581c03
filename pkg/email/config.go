package email

import (
	"time"

	"github.com/medibook/medibook_backend/config"
)

type Config struct {
	Enabled bool
	From    string

	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPUseTLS         bool
	SMTPTimeoutSeconds int

	// used by the templates
	AppName string
	BaseURL string
}

func DefaultConfig() Config {
	return Config{
		SMTPPort:           587,
		SMTPUseTLS:         true,
		SMTPTimeoutSeconds: 30,
		AppName:            "MediBook",
	}
}

func (c Config) SMTPTimeout() time.Duration {
	if c.SMTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SMTPTimeoutSeconds) * time.Second
}

// FromCentralConfig converts the email section; the frontend URI doubles as
// the link base in message bodies.
func FromCentralConfig(c *config.Config) Config {
	cfg := Config{
		Enabled:            c.Email.Enabled,
		From:               c.Email.From,
		SMTPHost:           c.Email.SMTP.Host,
		SMTPPort:           c.Email.SMTP.Port,
		SMTPUsername:       c.Email.SMTP.Username,
		SMTPPassword:       c.Email.SMTP.Password,
		SMTPUseTLS:         c.Email.SMTP.UseTLS,
		SMTPTimeoutSeconds: c.Email.SMTP.TimeoutSeconds,
		AppName:            DefaultConfig().AppName,
		BaseURL:            c.Server.FrontendURI,
	}
	if cfg.From == "" {
		cfg.From = cfg.SMTPUsername
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = DefaultConfig().SMTPPort
	}
	return cfg
}
