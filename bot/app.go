// Package bot wires the marketplace services to the Telegram transport.
package bot

import (
	"errors"
	"time"

	coreconfig "github.com/shomybay/marketbot/core/config"
	"github.com/shomybay/marketbot/core/logger"
	coretelegram "github.com/shomybay/marketbot/core/telegram"
	tghelpers "github.com/shomybay/marketbot/core/telegram/helpers"
	"github.com/shomybay/marketbot/core/telegram/keyboard"
	"github.com/shomybay/marketbot/core/telegram/router"
	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/render"
	"github.com/shomybay/marketbot/market/search"
	"github.com/shomybay/marketbot/market/session"
	"github.com/shomybay/marketbot/market/store"

	tele "gopkg.in/telebot.v4"
)

// App aggregates the services behind the bot handlers.
type App struct {
	cfg       *coreconfig.Config
	store     store.Store
	sessions  *session.Manager
	matcher   *search.Matcher
	startedAt time.Time
}

// New builds the application on top of the configured store.
func New(cfg *coreconfig.Config, st store.Store) *App {
	return &App{
		cfg:       cfg,
		store:     st,
		sessions:  session.NewManager(st, cfg.Market.SessionTTL.Std()),
		matcher:   search.NewMatcher(st, cfg.Market.PageSize),
		startedAt: time.Now(),
	}
}

// Store exposes the storage backend, e.g. for the status endpoint.
func (a *App) Store() store.Store { return a.store }

// StartedAt reports when the application was constructed.
func (a *App) StartedAt() time.Time { return a.startedAt }

// InProgress reports whether the user has an active listing wizard.
// Part of the router.Wizard interface.
func (a *App) InProgress(userID int64) bool {
	return a.sessions.Active(logger.Background(), userID)
}

// HandleText feeds one chat turn into the listing wizard.
// Part of the router.Wizard interface.
func (a *App) HandleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	res, err := a.sessions.Advance(ctx, c.Sender().ID, c.Text())
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			// Expired between Active and Advance; show the menu again.
			return tghelpers.SendMD(c, render.Welcome(), mainMenu())
		}
		return err
	}

	switch {
	case res.Completed():
		return tghelpers.SendMD(c, render.ListingCreated(res.Listing), mainMenu())
	case res.Invalid:
		return tghelpers.SendMD(c, render.StepReject(res.Step), stepMarkup(res.Step))
	default:
		return tghelpers.SendMD(c, render.StepPrompt(res.Step), stepMarkup(res.Step))
	}
}

// TelegramRunOptions assembles registry, middleware chain, and routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleSearchQuery)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, coretelegram.Route{
		Endpoint: tele.OnQuery,
		Handler:  a.handleInlineQuery,
	})

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}, nil
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(render.MainMenuRows()...)
}

// stepMarkup returns suggestion buttons for choice steps and leaves the
// current keyboard in place for free-form ones.
func stepMarkup(step market.Step) *tele.ReplyMarkup {
	if rows := render.StepSuggestions(step); rows != nil {
		return keyboard.ReplyButtons(rows...)
	}
	return nil
}
