package logs

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/pkg/reqctx"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Logging.Level = "debug"
	cfg.Logging.Output.File = config.FileLogConfig{
		Enabled:   true,
		Path:      filepath.Join(t.TempDir(), "app.log"),
		MaxSizeMB: 1,
	}

	l := New(cfg)
	if l == nil {
		t.Fatal("New() returned nil")
	}
	if !l.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestLokiRejectsBadEndpoint(t *testing.T) {
	_, _, err := newLokiHandler(config.LokiConfig{Enabled: true, Endpoint: "://nowhere"}, slog.LevelInfo)
	if err == nil {
		t.Fatal("expected an error for an unparsable endpoint")
	}
}

func TestFanoutRespectsLevels(t *testing.T) {
	var debug, warn bytes.Buffer
	h := &fanout{handlers: []slog.Handler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	l := slog.New(h).With("svc", "medibook")

	l.Info("booked")
	l.Warn("lock busy")

	if !strings.Contains(debug.String(), "booked") || !strings.Contains(debug.String(), "lock busy") {
		t.Errorf("debug sink = %q", debug.String())
	}
	if strings.Contains(warn.String(), "booked") || !strings.Contains(warn.String(), "svc=medibook") {
		t.Errorf("warn sink = %q", warn.String())
	}
}

type claims struct{ id uuid.UUID }

func (c claims) GetUserID() uuid.UUID     { return c.id }
func (c claims) GetRole() string          { return "doctor" }
func (c claims) GetSessionID() *uuid.UUID { return nil }
func (c claims) IsExpired() bool          { return false }

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	uid := uuid.New()
	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-42"})
	ctx = reqctx.WithClaims(ctx, claims{id: uid})

	FromContext(ctx).Warn("email failed")
	line := buf.String()
	for _, want := range []string{"request_id=req-42", "user_id=" + uid.String(), "email failed"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q lacks %q", line, want)
		}
	}

	buf.Reset()
	FromContext(context.Background()).Info("background")
	if strings.Contains(buf.String(), "request_id") || strings.Contains(buf.String(), "user_id") {
		t.Errorf("bare context produced %q", buf.String())
	}
}
