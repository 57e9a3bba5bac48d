package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/store"
)

func newManager(t *testing.T) (*Manager, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewManager(st, 0), st
}

func advance(t *testing.T, m *Manager, userID int64, text string) Result {
	t.Helper()
	res, err := m.Advance(context.Background(), userID, text)
	require.NoError(t, err)
	return res
}

func TestWizardHappyPath(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)
	require.NoError(t, m.Start(ctx, 42))
	assert.True(t, m.Active(ctx, 42))

	steps := []struct {
		input string
		next  market.Step
	}{
		{"Nike Air Force 1, размер 42", market.StepPrice},
		{"5000₽", market.StepStyle},
		{"Стритвир", market.StepGender},
		{"Унисекс", market.StepDescription},
		{"Состояние отличное, почти не носил", market.StepPhoto},
	}
	for _, s := range steps {
		res := advance(t, m, 42, s.input)
		assert.False(t, res.Invalid)
		assert.Equal(t, s.next, res.Step, "input %q", s.input)
	}

	res := advance(t, m, 42, "Пропустить")
	require.True(t, res.Completed())
	l := res.Listing

	assert.Equal(t, int64(42), l.UserID)
	assert.Equal(t, "Nike Air Force 1, размер 42", l.Title)
	assert.Equal(t, int64(5000), l.Price)
	assert.Equal(t, "Стритвир", l.Style)
	assert.Equal(t, "Унисекс", l.Gender)
	assert.Equal(t, "Состояние отличное, почти не носил", l.Description)
	assert.True(t, l.Approved)
	assert.NotZero(t, l.ID)
	assert.False(t, l.CreatedAt.IsZero())

	all, err := st.AllListings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "exactly one listing appended on completion")

	// Session is cleared: another turn without Start must be rejected.
	assert.False(t, m.Active(ctx, 42))
	_, err = m.Advance(ctx, 42, "что-нибудь")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestPriceValidationRepromptsSameStep(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)
	require.NoError(t, m.Start(ctx, 1))
	advance(t, m, 1, "Куртка")

	res := advance(t, m, 1, "free")
	assert.True(t, res.Invalid)
	assert.Equal(t, market.StepPrice, res.Step, "rejected input must not advance")

	// Retryable by construction: the same state is re-entered.
	res = advance(t, m, 1, "3 500 руб.")
	assert.False(t, res.Invalid)
	assert.Equal(t, market.StepStyle, res.Step)

	u, err := st.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), u.Session.Draft.Price)
}

func TestEmptyInputRejected(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	require.NoError(t, m.Start(ctx, 1))

	res := advance(t, m, 1, "   ")
	assert.True(t, res.Invalid)
	assert.Equal(t, market.StepTitle, res.Step)
}

func TestStartOverwritesInFlightWizard(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)
	require.NoError(t, m.Start(ctx, 9))
	advance(t, m, 9, "Старое название")
	advance(t, m, 9, "100")

	require.NoError(t, m.Start(ctx, 9))
	u, err := st.GetUser(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, u.Session)
	assert.Equal(t, market.StepTitle, u.Session.Step)
	assert.Equal(t, market.Draft{}, u.Session.Draft, "no leftover fields from the prior draft")
}

func TestPhotoStepIgnoresNonSkipText(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)
	require.NoError(t, m.Start(ctx, 5))
	for _, in := range []string{"Шапка", "500", "Кежуал", "Мужской", "Тёплая"} {
		advance(t, m, 5, in)
	}

	res := advance(t, m, 5, "вот фото")
	assert.True(t, res.Invalid)
	assert.Equal(t, market.StepPhoto, res.Step)

	all, err := st.AllListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "listing appears only when the skip literal arrives")
}

func TestAdvanceWithoutSessionFailsFast(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.Advance(ctx, 777, "привет")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m := NewManager(st, 30*time.Minute)

	current := time.Unix(1700000000, 0)
	m.now = func() time.Time { return current }

	require.NoError(t, m.Start(ctx, 3))
	advance(t, m, 3, "Джинсы")
	assert.True(t, m.Active(ctx, 3))

	current = current.Add(31 * time.Minute)
	assert.False(t, m.Active(ctx, 3))

	_, err := m.Advance(ctx, 3, "1200")
	assert.ErrorIs(t, err, ErrNoSession, "an expired session behaves like no session")

	u, err := st.GetUser(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, u.Session, "expired session is cleared on access")
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in    string
		want  int64
		valid bool
	}{
		{"5000", 5000, true},
		{"5000₽", 5000, true},
		{"около 1 500 рублей", 1500, true},
		{"free", 0, false},
		{"", 0, false},
		{"₽₽₽", 0, false},
	}
	for _, c := range cases {
		got, ok := parsePrice(c.in)
		assert.Equal(t, c.valid, ok, "input %q", c.in)
		if c.valid {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}
