package logs

import (
	"fmt"
	"log/slog"

	"github.com/grafana/loki-client-go/loki"
	promconfig "github.com/prometheus/common/config"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/medibook/medibook_backend/config"
)

// newLokiHandler pushes records to Loki in batches. Attributes attached with
// Logger.With become stream labels.
func newLokiHandler(c config.LokiConfig, level slog.Level) (slog.Handler, *loki.Client, error) {
	lc, err := loki.NewDefaultConfig(c.Endpoint + "/loki/api/v1/push")
	if err != nil {
		return nil, nil, fmt.Errorf("loki config: %w", err)
	}
	if c.Username != "" {
		lc.Client.BasicAuth = &promconfig.BasicAuth{
			Username: c.Username,
			Password: promconfig.Secret(c.Password),
		}
	}
	client, err := loki.New(lc)
	if err != nil {
		return nil, nil, fmt.Errorf("loki client: %w", err)
	}
	h := slogloki.Option{Level: level, Client: client}.NewLokiHandler()
	return h, client, nil
}
