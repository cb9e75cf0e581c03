package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/medibook/medibook_backend/config"
)

// Mailer is what services depend on; *Client is the SMTP implementation.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type Client struct {
	cfg Config
}

var _ Mailer = (*Client)(nil)

func NewFromCentral(cfg *config.Config) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, invalid("smtp host is required when email is enabled")
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) Config() Config { return c.cfg }

// Send delivers m over SMTP, giving up at the sooner of ctx's deadline and
// the configured SMTP timeout.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	d := c.dialer()
	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(msg)
	}()

	wait := c.cfg.SMTPTimeout()
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left > 0 && left < wait {
			wait = left
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: smtp: %v", ErrSend, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: smtp: %w", ErrSend, context.DeadlineExceeded)
	}
}

func (c *Client) dialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)
	// port 465 is implicit TLS; 587 upgrades with STARTTLS
	d.SSL = c.cfg.SMTPUseTLS && c.cfg.SMTPPort == 465
	if c.cfg.SMTPUseTLS {
		d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	}
	return d
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, invalid("from is required")
	}
	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, invalid("at least one recipient is required")
	}
	subj := strings.TrimSpace(m.Subject)
	if subj == "" {
		return nil, invalid("subject is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subj)
	if m.Kind != "" {
		msg.SetHeader("X-MediBook-Kind", m.Kind)
	}

	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""
	switch {
	case hasText && hasHTML:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		msg.SetBody("text/html", m.HTMLBody)
	case hasText:
		msg.SetBody("text/plain", m.TextBody)
	default:
		return nil, invalid("either TextBody or HTMLBody is required")
	}

	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
