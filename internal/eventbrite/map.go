// internal/eventbrite/map.go
package eventbrite

import (
	"time"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/model"
)

const defaultEventDuration = 2 * time.Hour

// MapEvent translates one raw Eventbrite record into the internal model.
// It performs no I/O. The Eventbrite payload carries no classification, so
// the category is always the default label.
func MapEvent(raw Event) (model.Event, error) {
	if raw.ID == "" {
		return model.Event{}, &apperrors.MappingError{Field: "id"}
	}
	if raw.Name.Text == "" {
		return model.Event{}, &apperrors.MappingError{Field: "name", RecordID: raw.ID}
	}
	start, err := time.Parse(time.RFC3339, raw.Start.UTC)
	if raw.Start.UTC == "" || err != nil {
		return model.Event{}, &apperrors.MappingError{Field: "start", RecordID: raw.ID}
	}

	end := start.Add(defaultEventDuration)
	if raw.End.UTC != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw.End.UTC); perr == nil {
			end = parsed
		}
	}

	status := model.NormalizeStatus(raw.Status)

	ev := model.Event{
		ExternalID: raw.ID,
		Source:     SourceName,
		Name:       raw.Name.Text,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		TicketURL:  raw.URL,
		Status:     status,
		Category:   "Uncategorized",
		VenueName:  "TBD",
		Published:  status == model.StatusOnSale,
	}

	if raw.Venue != nil {
		if raw.Venue.Name != "" {
			ev.VenueName = raw.Venue.Name
		}
		ev.VenueAddress = model.VenueAddress{
			Street:     raw.Venue.Address.Address1,
			Street2:    raw.Venue.Address.Address2,
			City:       raw.Venue.Address.City,
			PostalCode: raw.Venue.Address.PostalCode,
			State:      raw.Venue.Address.Region,
			Country:    raw.Venue.Address.Country,
		}
	}
	if raw.Logo != nil {
		ev.ImageURL = raw.Logo.URL
	}

	return ev, nil
}
