// Package render turns core results into outbound message text. Keeping the
// texts here lets the session and search components stay value-returning and
// testable without a bot client.
package render

import (
	"fmt"
	"strings"

	"github.com/shomybay/marketbot/core/telegram/format"
	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/search"
)

// Main menu button labels. The text router matches these verbatim.
const (
	BtnBuy        = "🛒 Купить"
	BtnSell       = "💰 Продать"
	BtnSearch     = "🔍 Поиск"
	BtnMyListings = "📋 Мои объявления"
	BtnPlatinum   = "💎 Platinum"
)

const untitled = "Без названия"

// StyleOptions are suggested (not enforced) answers for the style step.
var StyleOptions = []string{"Архив", "Кежуал", "Стритвир", "Спорт", "Другой"}

// GenderOptions are suggested (not enforced) answers for the gender step.
var GenderOptions = []string{"Мужской", "Женский", "Унисекс"}

// MainMenuRows lays out the persistent reply keyboard.
func MainMenuRows() [][]string {
	return [][]string{
		{BtnBuy, BtnSell},
		{BtnSearch, BtnMyListings},
		{BtnPlatinum},
	}
}

// Welcome greets a freshly registered user.
func Welcome() string {
	return "🤖 **Shomy Bay Bot**\n\n" +
		"Добро пожаловать в самый умный бот по покупке и продаже одежды!\n\n" +
		"✨ **Возможности:**\n" +
		"• 🔍 Поиск и фильтры\n" +
		"• 💰 Продажа товаров\n" +
		"• 🛒 Покупка товаров\n" +
		"• 💎 Platinum привилегии\n\n" +
		"Выберите действие:"
}

var stepPrompts = map[market.Step]string{
	market.StepTitle: "📝 **Шаг 1/6: Название товара**\n\n" +
		"Напишите название вашего товара:\n" +
		"Например: \"Nike Air Force 1, размер 42\"",
	market.StepPrice: "📝 **Шаг 2/6: Цена**\n\n" +
		"Укажите цену в рублях:\n" +
		"Например: \"5000\" или \"5000₽\"",
	market.StepStyle: "📝 **Шаг 3/6: Стиль**\n\n" +
		"Выберите стиль одежды:\n" +
		"• " + "Архив\n• Кежуал\n• Стритвир\n• Спорт\n• Другой",
	market.StepGender: "📝 **Шаг 4/6: Пол**\n\n" +
		"Для кого предназначена одежда:\n" +
		"• Мужской\n• Женский\n• Унисекс",
	market.StepDescription: "📝 **Шаг 5/6: Описание**\n\n" +
		"Опишите товар подробно:\n" +
		"• Состояние\n• Размер\n• Бренд\n• Особенности",
	market.StepPhoto: "📝 **Шаг 6/6: Фото**\n\n" +
		"Отправьте фото товара или напишите \"пропустить\"",
}

// StepPrompt renders the prompt asking for the given step's input.
func StepPrompt(step market.Step) string {
	prompt, ok := stepPrompts[step]
	if !ok {
		return ""
	}
	return "💰 **Создание объявления**\n\n" + prompt
}

// StepSuggestions returns reply keyboard rows for steps with suggested
// values, nil for free-form steps.
func StepSuggestions(step market.Step) [][]string {
	switch step {
	case market.StepStyle:
		return [][]string{StyleOptions[:2], StyleOptions[2:4], StyleOptions[4:]}
	case market.StepGender:
		return [][]string{GenderOptions[:2], GenderOptions[2:]}
	}
	return nil
}

// StepReject renders the validation message for a rejected input.
func StepReject(step market.Step) string {
	switch step {
	case market.StepPrice:
		return "❌ Введите корректную цену (только цифры)"
	case market.StepPhoto:
		return "Отправьте фото товара или напишите \"пропустить\""
	}
	return StepPrompt(step)
}

// ListingCreated confirms the completed wizard.
func ListingCreated(l *market.Listing) string {
	return "✅ **Объявление создано!**\n\n" +
		fmt.Sprintf("📝 **%s**\n", esc(l.Title)) +
		fmt.Sprintf("💰 **%d₽**\n", l.Price) +
		fmt.Sprintf("🎨 **%s**\n", esc(l.Style)) +
		fmt.Sprintf("👤 **%s**\n\n", esc(l.Gender)) +
		"Ваше объявление добавлено в ленту!"
}

// BuyMenu introduces the feed/search inline choice.
func BuyMenu() string {
	return "🛒 **Покупка товаров**\n\nВыберите способ поиска:"
}

// SearchMenu asks for search keywords.
func SearchMenu() string {
	return "🔍 **Поиск товаров**\n\n" +
		"Введите ключевые слова для поиска:\n" +
		"Например: \"кроссовки\", \"джинсы\", \"куртка\""
}

// PlatinumInfo advertises the platinum flag. Payment itself happens outside
// the bot, through the moderation panel link.
func PlatinumInfo(moderationURL string) string {
	return "💎 **Platinum привилегии**\n\n" +
		"✨ **Что дает Platinum:**\n" +
		"• Приоритетный показ объявлений +30%\n" +
		"• Больше людей увидят ваши объявления\n" +
		"• Специальный значок 💎 Platinum\n\n" +
		"💰 **Стоимость:** 300₽\n" +
		"🌐 **Оплата:** Через панель модерации\n" +
		"🔗 **Ссылка:** " + moderationURL
}

// MyListings renders the numbered list of the user's own listings.
func MyListings(ls []market.Listing) string {
	if len(ls) == 0 {
		return "У вас пока нет объявлений."
	}
	var b strings.Builder
	b.WriteString("📋 **Ваши объявления:**\n\n")
	for i, l := range ls {
		writeListingLine(&b, i+1, l)
	}
	return b.String()
}

// SearchResults renders one page of matches with the truncation footer.
func SearchResults(query string, res search.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Результаты поиска по запросу \"%s\":**\n\n", esc(query))
	for i, l := range res.Items {
		writeListingLine(&b, i+1, l)
	}
	if rem := res.Remaining(); rem > 0 {
		fmt.Fprintf(&b, "... и еще %d объявлений", rem)
	}
	return b.String()
}

// SearchNotFound renders the empty search result.
func SearchNotFound(query string) string {
	return fmt.Sprintf("🔍 По запросу \"%s\" ничего не найдено.\n\n", esc(query)) +
		"Попробуйте другие ключевые слова."
}

// FeedListing renders a feed draw.
func FeedListing(l *market.Listing) string {
	var b strings.Builder
	b.WriteString("📰 **Объявление из ленты:**\n\n")
	fmt.Fprintf(&b, "📝 **%s**\n", esc(format.Fallback(l.Title, untitled)))
	if l.Price > 0 {
		fmt.Fprintf(&b, "💰 **Цена:** %d₽\n", l.Price)
	}
	if l.Style != "" {
		fmt.Fprintf(&b, "🎨 **Стиль:** %s\n", esc(l.Style))
	}
	if l.Description != "" {
		fmt.Fprintf(&b, "📄 **Описание:** %s\n", esc(l.Description))
	}
	return b.String()
}

// FeedEmpty renders the explicit empty feed result.
func FeedEmpty() string {
	return "Лента пуста. Объявлений пока нет."
}

// ListingDetail renders the full listing card opened from search results.
func ListingDetail(l *market.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 **%s**\n\n", esc(format.Fallback(l.Title, untitled)))
	if l.Price > 0 {
		fmt.Fprintf(&b, "💰 **Цена:** %d₽\n", l.Price)
	}
	if l.Style != "" {
		fmt.Fprintf(&b, "🎨 **Стиль:** %s\n", esc(l.Style))
	}
	if l.Gender != "" {
		fmt.Fprintf(&b, "👤 **Пол:** %s\n", esc(l.Gender))
	}
	if l.Description != "" {
		fmt.Fprintf(&b, "📄 **Описание:** %s\n", esc(l.Description))
	}
	fmt.Fprintf(&b, "📅 %s", l.CreatedAt.Format("02.01.2006"))
	return b.String()
}

func writeListingLine(b *strings.Builder, n int, l market.Listing) {
	fmt.Fprintf(b, "%d. %s\n", n, esc(format.Fallback(l.Title, untitled)))
	if l.Price > 0 {
		fmt.Fprintf(b, "💰 %d₽\n", l.Price)
	}
	if l.Style != "" {
		fmt.Fprintf(b, "🎨 %s\n", esc(l.Style))
	}
	b.WriteString("\n")
}

// esc protects user-provided text from breaking the surrounding Markdown.
func esc(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}
