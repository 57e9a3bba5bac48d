package bot

import (
	"fmt"

	coretelegram "github.com/shomybay/marketbot/core/telegram"
	"github.com/shomybay/marketbot/core/telegram/callbacks"
	tghelpers "github.com/shomybay/marketbot/core/telegram/helpers"
	"github.com/shomybay/marketbot/core/telegram/keyboard"
	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/render"

	tele "gopkg.in/telebot.v4"
)

// Callback keys routed through the registry.
const (
	cbBuyFeed   = "buy_feed"
	cbBuySearch = "buy_search"
	cbListing   = "listing"
)

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	if err := reg.RegisterCallback(cbBuyFeed, a.handleFeed); err != nil {
		return err
	}
	if err := reg.RegisterCallback(cbBuySearch, a.handleSearch); err != nil {
		return err
	}
	return reg.RegisterCallback(cbListing, a.handleListingDetail)
}

func buyMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📰 Лента объявлений", Unique: cbBuyFeed, Data: "-"}},
		[]keyboard.InlineBtn{{Text: "🔍 Поиск по словам", Unique: cbBuySearch, Data: "-"}},
	)
}

// listingButtons puts one numbered detail button per shown search result
// on a single row, in display order.
func listingButtons(items []market.Listing) *tele.ReplyMarkup {
	if len(items) == 0 {
		return nil
	}
	row := make([]keyboard.InlineBtn, 0, len(items))
	for i, l := range items {
		row = append(row, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%d", i+1),
			Unique: cbListing,
			Data:   fmt.Sprintf("%d", l.ID),
		})
	}
	return keyboard.InlineButtonsRows(row)
}

// handleFeed draws one random approved listing and offers another draw.
func (a *App) handleFeed(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	l, err := a.matcher.Feed(ctx)
	if err != nil {
		return err
	}
	if l == nil {
		return tghelpers.SendMD(c, render.FeedEmpty())
	}
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "📄 Подробнее", Unique: cbListing, Data: fmt.Sprintf("%d", l.ID)},
			{Text: "🔄 Еще", Unique: cbBuyFeed, Data: "-"},
		},
	)
	return tghelpers.SendMD(c, render.FeedListing(l), markup)
}

// handleListingDetail opens the full card for a listing id from the payload.
func (a *App) handleListingDetail(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendMD(c, render.FeedEmpty())
	}

	all, err := a.store.AllListings(ctx)
	if err != nil {
		return err
	}
	var found *market.Listing
	for i := range all {
		if all[i].ID == id {
			found = &all[i]
			break
		}
	}
	if found == nil {
		return tghelpers.SendText(c, "Объявление не найдено.")
	}
	return tghelpers.SendMD(c, render.ListingDetail(found))
}
