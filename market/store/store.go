// Package store provides access to the shared user/listing state behind a
// narrow interface so the conversation and search components never touch a
// concrete backend directly.
package store

import (
	"context"

	"github.com/shomybay/marketbot/market"
)

// Counts summarizes store contents for the status endpoint.
type Counts struct {
	Users    int `json:"users"`
	Listings int `json:"listings"`
}

// Store is the persistence boundary of the core. Absent users and empty
// listing sets are normal results, not errors; only backend faults propagate.
type Store interface {
	// GetUser returns the user or nil when the id is unknown.
	GetUser(ctx context.Context, id int64) (*market.User, error)
	// PutUser inserts or fully replaces the user keyed by its id.
	PutUser(ctx context.Context, u *market.User) error

	// AppendListing stores the listing, assigning a fresh monotonic id
	// and creation timestamp when they are zero.
	AppendListing(ctx context.Context, l *market.Listing) error
	// AllListings returns every listing in insertion order.
	AllListings(ctx context.Context) ([]market.Listing, error)
	// ListingsByUser returns the user's listings in insertion order.
	ListingsByUser(ctx context.Context, userID int64) ([]market.Listing, error)

	Counts(ctx context.Context) (Counts, error)
}
