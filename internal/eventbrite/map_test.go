// internal/eventbrite/map_test.go
package eventbrite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/model"
)

func TestMapEvent(t *testing.T) {
	t.Run("maps a live event", func(t *testing.T) {
		raw := Event{ID: "eb-1", URL: "https://eventbrite.example/eb-1", Status: "live"}
		raw.Name.Text = "Community Meetup"
		raw.Start.UTC = "2025-05-01T18:00:00Z"
		raw.End.UTC = "2025-05-01T20:30:00Z"
		raw.Venue = &Venue{Name: "The Loft"}
		raw.Venue.Address.Address1 = "1 Main St"
		raw.Venue.Address.City = "New York"

		ev, err := MapEvent(raw)

		require.NoError(t, err)
		assert.Equal(t, "eb-1", ev.ExternalID)
		assert.Equal(t, SourceName, ev.Source)
		assert.Equal(t, model.StatusOnSale, ev.Status)
		assert.True(t, ev.Published)
		assert.Equal(t, "The Loft", ev.VenueName)
		assert.Equal(t, "1 Main St", ev.VenueAddress.Street)
		assert.Equal(t, time.Date(2025, 5, 1, 20, 30, 0, 0, time.UTC), ev.EndTime)
		assert.Equal(t, "Uncategorized", ev.Category)
	})

	t.Run("missing end defaults to start plus two hours", func(t *testing.T) {
		raw := Event{ID: "eb-2", Status: "live"}
		raw.Name.Text = "Open Mic"
		raw.Start.UTC = "2025-05-02T19:00:00Z"

		ev, err := MapEvent(raw)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 5, 2, 21, 0, 0, 0, time.UTC), ev.EndTime)
		assert.Equal(t, "TBD", ev.VenueName)
	})

	t.Run("canceled and deleted map to cancelled", func(t *testing.T) {
		for _, status := range []string{"canceled", "deleted"} {
			raw := Event{ID: "eb-3", Status: status}
			raw.Name.Text = "Gone"
			raw.Start.UTC = "2025-05-03T19:00:00Z"

			ev, err := MapEvent(raw)

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, ev.Status)
			assert.False(t, ev.Published)
		}
	})

	t.Run("missing name is a MappingError", func(t *testing.T) {
		raw := Event{ID: "eb-4"}
		raw.Start.UTC = "2025-05-04T19:00:00Z"

		_, err := MapEvent(raw)

		var mapErr *apperrors.MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, "name", mapErr.Field)
		assert.Equal(t, "eb-4", mapErr.RecordID)
	})
}
