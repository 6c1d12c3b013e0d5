// internal/store/store.go
package store

import (
	"context"
	"errors"

	"city-events-sync/internal/model"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// Repository is the persistence surface the sync and API layers depend on.
// Postgres backs it in production; Memory backs it in tests.
type Repository interface {
	// GetEventByExternalID returns the event with the given external id,
	// or ErrNotFound.
	GetEventByExternalID(ctx context.Context, externalID string) (model.Event, error)

	// CreateEvent inserts a new event keyed by its external id and stamps
	// last_synced_at. If a concurrent writer created the same external id
	// first, the call falls back to overwriting that row instead of
	// erroring; either way exactly one record exists afterwards.
	CreateEvent(ctx context.Context, ev model.Event) (model.Event, error)

	// UpdateEvent overwrites the mutable fields of the event with the
	// given external id and refreshes last_synced_at.
	UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error)

	// FindOrCreateVenue resolves a venue by exact name match, creating it
	// with the given best-effort address on first sight. Existing venues
	// are returned as stored; their address is never rewritten.
	FindOrCreateVenue(ctx context.Context, name string, addr model.VenueAddress) (model.Venue, error)

	// ListEvents returns events ordered by start time. A non-empty status
	// restricts the result.
	ListEvents(ctx context.Context, status model.Status) ([]model.Event, error)

	// ListVenues returns all venues ordered by name.
	ListVenues(ctx context.Context) ([]model.Venue, error)
}
