package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shomybay/marketbot/market"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u, err := m.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, u, "unknown user must resolve to nil, not an error")

	orig := &market.User{
		ID:        1,
		Username:  "buyer",
		FirstName: "Ivan",
		CreatedAt: time.Now(),
		Session:   &market.Session{Flow: market.FlowSell, Step: market.StepTitle},
	}
	require.NoError(t, m.PutUser(ctx, orig))

	got, err := m.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "buyer", got.Username)
	require.NotNil(t, got.Session)

	// Mutating the returned copy must not leak into the store.
	got.Session.Step = market.StepPhoto
	again, err := m.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, market.StepTitle, again.Session.Step)
}

func TestMemoryAppendAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	frozen := time.Unix(1700000000, 0)
	m.now = func() time.Time { return frozen }

	first := &market.Listing{UserID: 7, Title: "Nike Air Force 1"}
	second := &market.Listing{UserID: 7, Title: "Adidas Superstar"}
	require.NoError(t, m.AppendListing(ctx, first))
	require.NoError(t, m.AppendListing(ctx, second))

	assert.Equal(t, frozen.UnixMilli(), first.ID)
	assert.Greater(t, second.ID, first.ID, "same-millisecond ids must still increase")
	assert.Equal(t, frozen, first.CreatedAt)

	all, err := m.AllListings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Nike Air Force 1", all[0].Title, "insertion order is preserved")
}

func TestMemoryListingsByUserAndCounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.PutUser(ctx, &market.User{ID: 1}))
	require.NoError(t, m.AppendListing(ctx, &market.Listing{UserID: 1, Title: "a"}))
	require.NoError(t, m.AppendListing(ctx, &market.Listing{UserID: 2, Title: "b"}))
	require.NoError(t, m.AppendListing(ctx, &market.Listing{UserID: 1, Title: "c"}))

	mine, err := m.ListingsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a", mine[0].Title)
	assert.Equal(t, "c", mine[1].Title)

	counts, err := m.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 1, Listings: 3}, counts)
}

func TestMemoryConcurrentAppendAndRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.AppendListing(ctx, &market.Listing{UserID: 1, Title: "x"})
		}()
		go func() {
			defer wg.Done()
			_, _ = m.AllListings(ctx)
		}()
	}
	wg.Wait()

	all, err := m.AllListings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
