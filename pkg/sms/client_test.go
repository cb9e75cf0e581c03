package sms

import (
	"context"
	"testing"

	"github.com/medibook/medibook_backend/config"
)

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.SMSConfig
		wantErr     bool
		wantEnabled bool
	}{
		{"disabled", config.SMSConfig{}, false, false},
		{"enabled without key", config.SMSConfig{Enabled: true, SMSIR: config.SMSIRConfig{TemplateID: "1"}}, true, false},
		{"enabled without template", config.SMSConfig{Enabled: true, SMSIR: config.SMSIRConfig{APIKey: "k"}}, true, false},
		{"enabled", config.SMSConfig{Enabled: true, SMSIR: config.SMSIRConfig{APIKey: "k", SecretKey: "s", TemplateID: "1"}}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.IsEnabled() != tt.wantEnabled {
				t.Fatalf("IsEnabled = %v, want %v", c.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	c := &Client{}
	if err := c.SendAppointmentNotice(context.Background(), Notice{}); err != nil {
		t.Fatalf("disabled client returned %v", err)
	}
}

func TestEnabledClientRequiresPhone(t *testing.T) {
	c, err := NewFromConfig(config.SMSConfig{Enabled: true, SMSIR: config.SMSIRConfig{APIKey: "k", TemplateID: "1"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SendAppointmentNotice(context.Background(), Notice{Name: "x"}); err == nil {
		t.Fatal("expected error for missing phone")
	}
}
