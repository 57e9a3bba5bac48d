package store

import (
	"context"
	"sync"
	"time"

	"github.com/shomybay/marketbot/market"
)

// Memory is the reference in-memory store: process-lifetime maps guarded by
// a RWMutex. Listing appends are atomic with respect to concurrent reads.
type Memory struct {
	mu       sync.RWMutex
	users    map[int64]*market.User
	listings []market.Listing
	lastID   int64
	now      func() time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[int64]*market.User),
		now:   time.Now,
	}
}

// GetUser returns a copy of the stored user or nil when unknown.
func (m *Memory) GetUser(_ context.Context, id int64) (*market.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

// PutUser inserts or replaces the user.
func (m *Memory) PutUser(_ context.Context, u *market.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[u.ID] = copyUser(u)
	return nil
}

// AppendListing assigns id/timestamp when unset and appends the listing.
func (m *Memory) AppendListing(_ context.Context, l *market.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l.CreatedAt.IsZero() {
		l.CreatedAt = m.now()
	}
	if l.ID == 0 {
		l.ID = m.nextIDLocked()
	}
	if l.ID > m.lastID {
		m.lastID = l.ID
	}
	m.listings = append(m.listings, *l)
	return nil
}

// nextIDLocked produces millisecond-timestamp ids, bumped past the previous
// one so two listings created within the same millisecond stay distinct.
func (m *Memory) nextIDLocked() int64 {
	id := m.now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	return id
}

// AllListings returns all listings in insertion order.
func (m *Memory) AllListings(_ context.Context) ([]market.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]market.Listing, len(m.listings))
	copy(out, m.listings)
	return out, nil
}

// ListingsByUser returns the user's listings in insertion order.
func (m *Memory) ListingsByUser(_ context.Context, userID int64) ([]market.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []market.Listing
	for _, l := range m.listings {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Counts reports how many users and listings the store holds.
func (m *Memory) Counts(_ context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Counts{Users: len(m.users), Listings: len(m.listings)}, nil
}

func copyUser(u *market.User) *market.User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Session != nil {
		sess := *u.Session
		cp.Session = &sess
	}
	return &cp
}
