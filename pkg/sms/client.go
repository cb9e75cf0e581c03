package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/medibook/medibook_backend/config"
)

// Notice is a short appointment text rendered by the provider template.
type Notice struct {
	Phone  string
	Name   string
	Date   string
	Shift  string
	Status string
}

type Sender interface {
	SendAppointmentNotice(ctx context.Context, n Notice) error
	IsEnabled() bool
}

// Client sends templated SMS through sms.ir.
type Client struct {
	client     *smsir.Client
	templateID string
	enabled    bool
}

var _ Sender = (*Client)(nil)

// NewFromConfig returns a no-op client when SMS is disabled.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, errors.New("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.TemplateID == "" {
		return nil, errors.New("sms.ir template id required when SMS enabled")
	}

	return &Client{
		client:     smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		templateID: cfg.SMSIR.TemplateID,
		enabled:    true,
	}, nil
}

// SendAppointmentNotice fills the template parameters name, date, shift and status.
func (c *Client) SendAppointmentNotice(ctx context.Context, n Notice) error {
	if !c.enabled {
		return nil
	}
	if n.Phone == "" {
		return errors.New("phone number is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     n.Phone,
		TemplateID: c.templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "name", Value: n.Name},
			{Key: "date", Value: n.Date},
			{Key: "shift", Value: n.Shift},
			{Key: "status", Value: n.Status},
		},
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}
