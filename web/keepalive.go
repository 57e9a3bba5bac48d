package web

import (
	"context"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/shomybay/marketbot/core/logger"
)

// webLog reports a web event. The package may be exercised before
// InitLogger runs, so a missing logger downgrades to a no-op.
func webLog(level slog.Level, msg string, attrs ...slog.Attr) {
	if logger.Web == nil {
		return
	}
	logger.Web.LogAttrs(context.Background(), level, msg, attrs...)
}

// Pinger periodically requests a URL so the hosting platform keeps the
// process warm.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
}

// NewPinger builds a keep-alive pinger. A nil client selects a default
// with a 10 second timeout.
func NewPinger(url string, interval time.Duration, client *http.Client) *Pinger {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   client,
	}
}

// Run pings until the context is cancelled. The first ping happens after
// one full interval.
func (p *Pinger) Run(ctx context.Context) {
	if p.url == "" || p.interval <= 0 {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		webLog(slog.LevelWarn, "keepalive request build failed",
			slog.String("event", "web.keepalive"),
			slog.String("err", err.Error()),
		)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		webLog(slog.LevelWarn, "keepalive ping failed",
			slog.String("event", "web.keepalive"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Duration("duration", logger.Took(start)),
		)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	webLog(slog.LevelDebug, "keepalive ping",
		slog.String("event", "web.keepalive"),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)
}
