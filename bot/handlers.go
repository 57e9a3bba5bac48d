package bot

import (
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/shomybay/marketbot/core/buildinfo"
	"github.com/shomybay/marketbot/core/logger"
	coretelegram "github.com/shomybay/marketbot/core/telegram"
	"github.com/shomybay/marketbot/core/telegram/commands"
	tghelpers "github.com/shomybay/marketbot/core/telegram/helpers"
	"github.com/shomybay/marketbot/core/telegram/ui"
	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/render"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/sell", commands.Command{
		Handler:     a.handleSell,
		Description: "Создать объявление",
		Aliases:     []string{render.BtnSell},
	})
	reg.RegisterCommand("/buy", commands.Command{
		Handler:     a.handleBuy,
		Description: "Покупка товаров",
		Aliases:     []string{render.BtnBuy},
	})
	reg.RegisterCommand("/search", commands.Command{
		Handler:     a.handleSearch,
		Description: "Поиск по объявлениям",
		Aliases:     []string{render.BtnSearch},
	})
	reg.RegisterCommand("/mylistings", commands.Command{
		Handler:     a.handleMyListings,
		Description: "Ваши объявления",
		Aliases:     []string{render.BtnMyListings},
	})
	reg.RegisterCommand("/platinum", commands.Command{
		Handler:     a.handlePlatinum,
		Description: "Platinum привилегии",
		Aliases:     []string{render.BtnPlatinum},
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.handleStatus,
		Description: "Состояние бота",
		AdminOnly:   true,
		Hidden:      true,
	})
}

// handleStart registers the user (idempotently) and shows the main menu.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()

	u, err := tghelpers.CurrentUser[*market.User](ctx, a.store, sender.ID)
	if err != nil {
		return err
	}
	if u == nil {
		u = &market.User{ID: sender.ID, CreatedAt: time.Now()}
		logger.Info(ctx, "service.users", "user.registered",
			slog.String("status", "ok"),
			slog.Int64("user_id", sender.ID),
		)
	}
	u.Username = sender.Username
	u.FirstName = sender.FirstName
	if err := a.store.PutUser(ctx, u); err != nil {
		return err
	}

	return tghelpers.SendMD(c, render.Welcome(), mainMenu())
}

// handleSell starts (or restarts) the listing wizard at the first step.
func (a *App) handleSell(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := a.sessions.Start(ctx, c.Sender().ID); err != nil {
		return err
	}
	return tghelpers.SendMD(c, render.StepPrompt(market.StepTitle))
}

func (a *App) handleBuy(c tele.Context) error {
	return tghelpers.SendMD(c, render.BuyMenu(), buyMenuMarkup())
}

func (a *App) handleSearch(c tele.Context) error {
	return tghelpers.SendMD(c, render.SearchMenu())
}

func (a *App) handleMyListings(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	ls, err := a.store.ListingsByUser(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, render.MyListings(ls))
}

func (a *App) handlePlatinum(c tele.Context) error {
	return tghelpers.SendMD(c, render.PlatinumInfo(a.cfg.Market.ModerationURL))
}

// handleStatus reports runtime counters to the admin inside the chat.
func (a *App) handleStatus(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	counts, err := a.store.Counts(ctx)
	if err != nil {
		return err
	}
	uptime := logger.RoundMS(time.Since(a.startedAt))
	text := fmt.Sprintf(
		"✅ Бот работает\n\n👥 Пользователей: %d\n📦 Объявлений: %d\n⏱ Аптайм: %s\n🏷 Версия: %s",
		counts.Users, counts.Listings, uptime, buildinfo.Version,
	)
	return tghelpers.SendText(c, text)
}

// handleSearchQuery is the text fallback: any message that is neither a
// command, a menu button, nor a wizard turn is treated as a search query.
func (a *App) handleSearchQuery(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	query := strings.TrimSpace(c.Text())
	if len([]rune(query)) < a.cfg.Market.MinQueryLen {
		return nil
	}

	res, err := a.matcher.Search(ctx, query)
	if err != nil {
		return err
	}
	if res.Total == 0 {
		return tghelpers.SendMD(c, render.SearchNotFound(query))
	}

	logger.Info(ctx, "service.search", "search.shown",
		slog.String("status", "ok"),
		slog.String("query", logger.SanitizeLimit(query, 64)),
		slog.Int("listings_shown", len(res.Items)),
		slog.Int("listings_total", res.Total),
	)
	return tghelpers.SendMD(c, render.SearchResults(query, res), listingButtons(res.Items))
}

// handleInlineQuery answers @bot inline searches with listing cards.
func (a *App) handleInlineQuery(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	query := strings.TrimSpace(c.Query().Text)
	if len([]rune(query)) < a.cfg.Market.MinQueryLen {
		return c.Answer(&tele.QueryResponse{Results: tele.Results{}})
	}

	res, err := a.matcher.Search(ctx, query)
	if err != nil {
		return err
	}

	results := make(tele.Results, 0, len(res.Items))
	for _, l := range res.Items {
		title := l.Title
		if title == "" {
			title = "Без названия"
		}
		results = append(results, ui.NewSimpleArticleResult(
			fmt.Sprintf("listing-%d", l.ID),
			title,
			render.ListingDetail(&l),
		))
	}
	return c.Answer(&tele.QueryResponse{
		Results:   results,
		CacheTime: 30,
	})
}
