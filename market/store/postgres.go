package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shomybay/marketbot/market"
)

// Postgres is the durable store used when database.driver is "postgres".
// It keeps the same monotonic listing-id scheme as the memory store, seeded
// from the highest persisted id at startup.
type Postgres struct {
	db *sqlx.DB

	idMu   sync.Mutex
	lastID int64
	now    func() time.Time
}

// NewPostgres wraps an open sqlx connection and seeds the id counter.
func NewPostgres(db *sqlx.DB) (*Postgres, error) {
	const op = "store.NewPostgres"

	p := &Postgres{db: db, now: time.Now}
	if err := db.Get(&p.lastID, `SELECT COALESCE(MAX(id), 0) FROM listings`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

type userRow struct {
	market.User
	SessionRaw []byte `db:"session"`
}

// GetUser returns the user or nil when the id is unknown.
func (p *Postgres) GetUser(ctx context.Context, id int64) (*market.User, error) {
	const op = "store.GetUser"

	var row userRow
	err := p.db.GetContext(ctx, &row,
		`SELECT id, username, first_name, platinum, created_at, session
		   FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := row.User
	if len(row.SessionRaw) > 0 {
		var sess market.Session
		if err := json.Unmarshal(row.SessionRaw, &sess); err != nil {
			return nil, fmt.Errorf("%s: decode session: %w", op, err)
		}
		u.Session = &sess
	}
	return &u, nil
}

// PutUser upserts the user, including its serialized session state.
func (p *Postgres) PutUser(ctx context.Context, u *market.User) error {
	const op = "store.PutUser"

	var sessionRaw []byte
	if u.Session != nil {
		raw, err := json.Marshal(u.Session)
		if err != nil {
			return fmt.Errorf("%s: encode session: %w", op, err)
		}
		sessionRaw = raw
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO users (id, username, first_name, platinum, created_at, session)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   username = EXCLUDED.username,
		   first_name = EXCLUDED.first_name,
		   platinum = EXCLUDED.platinum,
		   session = EXCLUDED.session`,
		u.ID, u.Username, u.FirstName, u.Platinum, u.CreatedAt, sessionRaw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AppendListing assigns id/timestamp when unset and inserts the listing.
func (p *Postgres) AppendListing(ctx context.Context, l *market.Listing) error {
	const op = "store.AppendListing"

	if l.CreatedAt.IsZero() {
		l.CreatedAt = p.now()
	}
	p.idMu.Lock()
	if l.ID == 0 {
		id := p.now().UnixMilli()
		if id <= p.lastID {
			id = p.lastID + 1
		}
		l.ID = id
	}
	if l.ID > p.lastID {
		p.lastID = l.ID
	}
	p.idMu.Unlock()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO listings
		   (id, user_id, title, price, style, gender, description, created_at, approved)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.UserID, l.Title, l.Price, l.Style, l.Gender, l.Description,
		l.CreatedAt, l.Approved)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AllListings returns every listing ordered by insertion.
func (p *Postgres) AllListings(ctx context.Context) ([]market.Listing, error) {
	const op = "store.AllListings"

	var out []market.Listing
	err := p.db.SelectContext(ctx, &out,
		`SELECT id, user_id, title, price, style, gender, description, created_at, approved
		   FROM listings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListingsByUser returns the user's listings ordered by insertion.
func (p *Postgres) ListingsByUser(ctx context.Context, userID int64) ([]market.Listing, error) {
	const op = "store.ListingsByUser"

	var out []market.Listing
	err := p.db.SelectContext(ctx, &out,
		`SELECT id, user_id, title, price, style, gender, description, created_at, approved
		   FROM listings WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Counts reports user and listing totals.
func (p *Postgres) Counts(ctx context.Context) (Counts, error) {
	const op = "store.Counts"

	var c Counts
	if err := p.db.GetContext(ctx, &c.Users, `SELECT COUNT(*) FROM users`); err != nil {
		return Counts{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := p.db.GetContext(ctx, &c.Listings, `SELECT COUNT(*) FROM listings`); err != nil {
		return Counts{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
