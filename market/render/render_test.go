package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/search"
)

func TestStepPromptsCoverEveryStep(t *testing.T) {
	steps := []market.Step{
		market.StepTitle, market.StepPrice, market.StepStyle,
		market.StepGender, market.StepDescription, market.StepPhoto,
	}
	for _, s := range steps {
		assert.NotEmpty(t, StepPrompt(s), "step %s", s)
	}
	assert.Empty(t, StepPrompt(market.Step("bogus")))
}

func TestSearchResultsFooter(t *testing.T) {
	items := []market.Listing{
		{Title: "Кроссовки", Price: 5000, Style: "Спорт"},
		{Title: "Кеды"},
	}
	text := SearchResults("обувь", search.Result{Items: items, Total: 9})

	assert.Contains(t, text, "\"обувь\"")
	assert.Contains(t, text, "1. Кроссовки")
	assert.Contains(t, text, "💰 5000₽")
	assert.Contains(t, text, "2. Кеды")
	assert.Contains(t, text, "... и еще 7 объявлений")
}

func TestSearchResultsNoFooterWhenComplete(t *testing.T) {
	items := []market.Listing{{Title: "Кеды"}}
	text := SearchResults("кеды", search.Result{Items: items, Total: 1})
	assert.NotContains(t, text, "... и еще")
}

func TestFeedListingSkipsMissingFields(t *testing.T) {
	text := FeedListing(&market.Listing{Title: "Рубашка"})
	assert.Contains(t, text, "Рубашка")
	assert.NotContains(t, text, "Цена")
	assert.NotContains(t, text, "Стиль")
	assert.NotContains(t, text, "Описание")

	text = FeedListing(&market.Listing{})
	assert.Contains(t, text, "Без названия")
}

func TestMyListingsEmpty(t *testing.T) {
	assert.Equal(t, "У вас пока нет объявлений.", MyListings(nil))
}

func TestListingTitleEscaped(t *testing.T) {
	text := FeedListing(&market.Listing{Title: "Nike *оригинал*"})
	assert.True(t, strings.Contains(text, `\*оригинал\*`) || !strings.Contains(text, "*оригинал*"),
		"markdown markers in user text must not leak: %q", text)
}

func TestStepSuggestions(t *testing.T) {
	assert.NotEmpty(t, StepSuggestions(market.StepStyle))
	assert.NotEmpty(t, StepSuggestions(market.StepGender))
	assert.Nil(t, StepSuggestions(market.StepTitle))
}
