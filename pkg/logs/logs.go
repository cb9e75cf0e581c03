package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/pkg/reqctx"
)

var lokiClient *loki.Client

// New builds a logger from config, supporting multi-output fan-out.
func New(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)
	isDev := strings.EqualFold(cfg.Server.Environment, "development")

	var writers []io.Writer

	// Always write to stdout if enabled or nothing else is configured
	if cfg.Logging.Output.Stdout || (!cfg.Logging.Output.File.Enabled && !cfg.Logging.Output.Loki.Enabled) {
		writers = append(writers, os.Stdout)
	}

	// File output with rotation via lumberjack
	if cfg.Logging.Output.File.Enabled {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Logging.Output.File.Path,
			MaxSize:    cfg.Logging.Output.File.MaxSizeMB,
			MaxBackups: cfg.Logging.Output.File.MaxBackups,
			MaxAge:     cfg.Logging.Output.File.MaxAgeDays,
			Compress:   cfg.Logging.Output.File.Compress,
		})
	}

	var handlers []slog.Handler

	// Build handler(s) for file/stdout writers
	if len(writers) > 0 {
		w := io.MultiWriter(writers...)
		opts := &slog.HandlerOptions{
			Level:     level,
			AddSource: isDev,
		}
		if strings.EqualFold(cfg.Logging.Format, "json") || !isDev {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}

	if cfg.Logging.Output.Loki.Enabled {
		lh, client, err := newLokiHandler(cfg.Logging.Output.Loki, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loki output disabled: %v\n", err)
		} else {
			lokiClient = client
			handlers = append(handlers, lh)
		}
	}
	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = &fanout{handlers: handlers}
	}

	return slog.New(h).With(
		slog.String("service", cfg.Observability.ServiceName),
		slog.String("version", cfg.Observability.ServiceVersion),
		slog.String("env", cfg.Server.Environment),
	)
}

// Flush stops the Loki client, pushing any buffered batch. It is a no-op
// when Loki output is off.
func Flush() {
	if lokiClient != nil {
		lokiClient.Stop()
	}
}

// FromContext returns the default logger annotated with the request id and,
// when authenticated, the calling user.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		l = l.With(slog.String("request_id", rid))
	}
	if uid, ok := reqctx.UserIDFromContext(ctx); ok {
		l = l.With(slog.String("user_id", uid.String()))
	}
	return l
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
