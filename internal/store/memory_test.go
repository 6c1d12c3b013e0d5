// internal/store/memory_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-events-sync/internal/model"
)

func testEvent(externalID string, venueID int64) model.Event {
	return model.Event{
		ExternalID: externalID,
		Source:     "ticketmaster",
		Name:       "Show " + externalID,
		StartTime:  time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC),
		Status:     model.StatusOnSale,
		Category:   "Uncategorized",
		VenueID:    venueID,
		VenueName:  "Venue",
	}
}

func TestMemory_CreateEvent_ConflictFallsBackToUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v, err := m.FindOrCreateVenue(ctx, "Venue", model.VenueAddress{})
	require.NoError(t, err)

	first, err := m.CreateEvent(ctx, testEvent("ev-1", v.ID))
	require.NoError(t, err)

	// A concurrent writer that lost the race calls CreateEvent for an
	// external id that already exists; it must overwrite, not duplicate.
	second := testEvent("ev-1", v.ID)
	second.Name = "Renamed"
	got, err := m.CreateEvent(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "same row, not a new one")
	assert.Equal(t, "Renamed", got.Name)

	events, err := m.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMemory_UpdateEvent_RefreshesLastSynced(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v, err := m.FindOrCreateVenue(ctx, "Venue", model.VenueAddress{})
	require.NoError(t, err)

	created, err := m.CreateEvent(ctx, testEvent("ev-1", v.ID))
	require.NoError(t, err)
	assert.False(t, created.LastSyncedAt.IsZero())

	updated := testEvent("ev-1", v.ID)
	updated.Status = model.StatusCancelled
	got, err := m.UpdateEvent(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.False(t, got.LastSyncedAt.Before(created.LastSyncedAt))

	_, err = m.UpdateEvent(ctx, testEvent("no-such", v.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_FindOrCreateVenue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	addr := model.VenueAddress{Street: "4 Pennsylvania Plaza", City: "New York", Country: "US"}
	v1, err := m.FindOrCreateVenue(ctx, "Madison Square Garden", addr)
	require.NoError(t, err)
	assert.Equal(t, "4 Pennsylvania Plaza", v1.Street)

	// Second sight reuses the venue and ignores the new address.
	v2, err := m.FindOrCreateVenue(ctx, "Madison Square Garden", model.VenueAddress{Street: "different"})
	require.NoError(t, err)
	assert.Equal(t, v1.ID, v2.ID)
	assert.Equal(t, "4 Pennsylvania Plaza", v2.Street)

	// Matching is case-sensitive exact-string.
	v3, err := m.FindOrCreateVenue(ctx, "madison square garden", model.VenueAddress{})
	require.NoError(t, err)
	assert.NotEqual(t, v1.ID, v3.ID)

	venues, err := m.ListVenues(ctx)
	require.NoError(t, err)
	assert.Len(t, venues, 2)
}

func TestMemory_ListEvents_StatusFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v, err := m.FindOrCreateVenue(ctx, "Venue", model.VenueAddress{})
	require.NoError(t, err)

	onSale := testEvent("ev-1", v.ID)
	cancelled := testEvent("ev-2", v.ID)
	cancelled.Status = model.StatusCancelled
	_, err = m.CreateEvent(ctx, onSale)
	require.NoError(t, err)
	_, err = m.CreateEvent(ctx, cancelled)
	require.NoError(t, err)

	all, err := m.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := m.ListEvents(ctx, model.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "ev-2", only[0].ExternalID)
}
