// internal/ticketmaster/map.go
package ticketmaster

import (
	"time"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/model"
)

// Source has historically omitted the end time for some categories.
const defaultEventDuration = 2 * time.Hour

// MapEvent translates one raw Discovery API record into the internal model.
// It performs no I/O. A missing id, name or start timestamp yields a
// MappingError; every other absence falls back to a default.
func MapEvent(raw Event) (model.Event, error) {
	if raw.ID == "" {
		return model.Event{}, &apperrors.MappingError{Field: "id"}
	}
	if raw.Name == "" {
		return model.Event{}, &apperrors.MappingError{Field: "name", RecordID: raw.ID}
	}
	start, err := time.Parse(time.RFC3339, raw.Dates.Start.DateTime)
	if raw.Dates.Start.DateTime == "" || err != nil {
		return model.Event{}, &apperrors.MappingError{Field: "start", RecordID: raw.ID}
	}

	end := start.Add(defaultEventDuration)
	if raw.Dates.End.DateTime != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw.Dates.End.DateTime); perr == nil {
			end = parsed
		}
	}

	status := model.NormalizeStatus(raw.Dates.Status.Code)

	ev := model.Event{
		ExternalID: raw.ID,
		Source:     SourceName,
		Name:       raw.Name,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		TicketURL:  raw.URL,
		Status:     status,
		Category:   categoryLabel(raw.Classifications),
		VenueName:  "TBD",
		Published:  status == model.StatusOnSale,
	}

	if len(raw.Embedded.Venues) > 0 {
		v := raw.Embedded.Venues[0]
		if v.Name != "" {
			ev.VenueName = v.Name
		}
		ev.VenueAddress = model.VenueAddress{
			Street:     v.Address.Line1,
			Street2:    v.Address.Line2,
			City:       v.City.Name,
			PostalCode: v.PostalCode,
			State:      v.State.StateCode,
			Country:    v.Country.CountryCode,
		}
	}
	if len(raw.Images) > 0 {
		ev.ImageURL = raw.Images[0].URL
	}

	return ev, nil
}

func categoryLabel(cs []classification) string {
	if len(cs) > 0 {
		if cs[0].Segment.Name != "" {
			return cs[0].Segment.Name
		}
		if cs[0].Genre.Name != "" {
			return cs[0].Genre.Name
		}
	}
	return "Uncategorized"
}
