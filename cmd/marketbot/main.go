// Command marketbot runs the Shomy Bay marketplace Telegram bot together
// with its HTTP status sidecar.
package main

import (
	"context"
	"log"

	"log/slog"

	"github.com/shomybay/marketbot/bot"
	"github.com/shomybay/marketbot/core/bootstrap"
	corecmd "github.com/shomybay/marketbot/core/cmd"
	coreconfig "github.com/shomybay/marketbot/core/config"
	"github.com/shomybay/marketbot/core/logger"
	coretelegram "github.com/shomybay/marketbot/core/telegram"
	"github.com/shomybay/marketbot/web"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        coreconfig.Load,
		Bootstrap: func(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
			res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return &app{bot: bot.New(cfg, res.Store), cfg: cfg}, nil
		},
	})
	if err != nil {
		log.Fatalf("marketbot: %v", err)
	}
}

// app decorates the bot with the HTTP sidecar lifecycle.
type app struct {
	bot *bot.App
	cfg *coreconfig.Config
}

func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	opts, err := a.bot.TelegramRunOptions()
	if err != nil {
		return opts, err
	}

	prevStart := opts.OnStart
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		if a.cfg.Status.Listen != "" {
			srv := web.NewServer(a.cfg.Status.Listen, a.bot.Store(), a.bot.StartedAt())
			go func() {
				if err := srv.Run(ctx); err != nil {
					logger.Web.Error("status server stopped",
						slog.String("event", "web.stop"),
						slog.String("err", err.Error()),
					)
				}
			}()
		}
		if a.cfg.Status.KeepAliveURL != "" {
			pinger := web.NewPinger(a.cfg.Status.KeepAliveURL, a.cfg.Status.KeepAliveInterval.Std(), nil)
			go pinger.Run(ctx)
		}
		return nil
	}

	return opts, nil
}
