package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/store"
)

func seed(t *testing.T, st *store.Memory, listings ...market.Listing) {
	t.Helper()
	for i := range listings {
		require.NoError(t, st.AppendListing(context.Background(), &listings[i]))
	}
}

func TestSearchEmptyStore(t *testing.T) {
	m := NewMatcher(store.NewMemory(), 0)

	res, err := m.Search(context.Background(), "боты")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	st := store.NewMemory()
	seed(t, st,
		market.Listing{Title: "Nike Air Force 1", Approved: true},
		market.Listing{Title: "Adidas Superstar", Approved: true},
	)
	m := NewMatcher(st, 0)

	for _, q := range []string{"nike", "NIKE", "Nike"} {
		res, err := m.Search(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, res.Items, 1, "query %q", q)
		assert.Equal(t, "Nike Air Force 1", res.Items[0].Title)
		assert.Equal(t, 1, res.Total)
	}
}

func TestSearchMatchesDescription(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, market.Listing{
		Title:       "Куртка",
		Description: "Зимняя, бренд North Face",
		Approved:    true,
	})
	m := NewMatcher(st, 0)

	res, err := m.Search(context.Background(), "north face")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestSearchTruncatesToPageSize(t *testing.T) {
	st := store.NewMemory()
	for i := 0; i < 8; i++ {
		seed(t, st, market.Listing{Title: "Кроссовки Nike", Approved: true})
	}
	m := NewMatcher(st, 0)

	res, err := m.Search(context.Background(), "кроссовки")
	require.NoError(t, err)
	assert.Len(t, res.Items, 5, "never more than the page size")
	assert.Equal(t, 8, res.Total, "full match count is still computed")
	assert.Equal(t, 3, res.Remaining())
}

func TestSearchPreservesInsertionOrder(t *testing.T) {
	st := store.NewMemory()
	seed(t, st,
		market.Listing{Title: "Джинсы Levi's 501", Approved: true},
		market.Listing{Title: "Худи", Description: "под джинсы", Approved: true},
	)
	m := NewMatcher(st, 0)

	res, err := m.Search(context.Background(), "джинсы")
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Джинсы Levi's 501", res.Items[0].Title)
}

func TestSearchFuzzyShortQuery(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, market.Listing{Title: "Стритвир худи", Approved: true})
	m := NewMatcher(st, 0)

	// One substitution away from the title token.
	res, err := m.Search(context.Background(), "стритвер")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	res, err = m.Search(context.Background(), "пальто")
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestSearchQueryLongerThanFields(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, market.Listing{Title: "Шарф", Approved: true})
	m := NewMatcher(st, 0)

	res, err := m.Search(context.Background(), "очень длинный запрос которому ничего не соответствует")
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestFeedExcludesUnapproved(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seed(t, st,
		market.Listing{Title: "hidden", Approved: false},
		market.Listing{Title: "visible", Approved: true},
	)
	m := NewMatcher(st, 0)
	m.intn = func(n int) int { return 0 }

	l, err := m.Feed(ctx)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "visible", l.Title)
}

func TestFeedEmptyWhenNothingApproved(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seed(t, st,
		market.Listing{Title: "a", Approved: false},
		market.Listing{Title: "b", Approved: false},
	)
	m := NewMatcher(st, 0)

	l, err := m.Feed(ctx)
	require.NoError(t, err)
	assert.Nil(t, l, "empty feed is an explicit empty result, not an error")
}

func TestIsSimilar(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"streetwear", "streetware", true}, // one substitution within 10 chars
		{"стритвир", "стритвер", true},
		{"casual", "Casual", true},
		{"спорт", "спортивный", true}, // containment
		{"a", "completely different phrase", false},
		{"куртка", "пальто", false},
		{"", "что-то", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsSimilar(c.a, c.b), "IsSimilar(%q, %q)", c.a, c.b)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"стритвир", "стритвер", 1},
	}
	for _, c := range cases {
		got := levenshtein([]rune(c.a), []rune(c.b))
		assert.Equal(t, c.want, got, "levenshtein(%q, %q)", c.a, c.b)
	}
}
