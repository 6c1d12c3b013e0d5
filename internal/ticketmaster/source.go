// internal/ticketmaster/source.go
package ticketmaster

import (
	"context"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/source"
)

// Source adapts the client to the syncer's source interface for one fixed
// city filter.
type Source struct {
	client  *Client
	city    string
	country string
	apiKey  string
}

func NewSource(client *Client, city, country, apiKey string) *Source {
	return &Source{client: client, city: city, country: country, apiKey: apiKey}
}

func (s *Source) Name() string { return SourceName }

// Fetch runs the full paged fetch and maps each raw record. The credential
// is checked up front so a missing key fails before any HTTP call.
func (s *Source) Fetch(ctx context.Context) ([]source.Record, error) {
	if s.apiKey == "" {
		return nil, &apperrors.MissingCredentialError{Provider: SourceName}
	}

	raws, err := s.client.FetchAll(ctx, s.city, s.country, s.apiKey)
	if err != nil {
		return nil, err
	}

	recs := make([]source.Record, 0, len(raws))
	for _, raw := range raws {
		ev, mapErr := MapEvent(raw)
		recs = append(recs, source.Record{Event: ev, MapErr: mapErr})
	}
	return recs, nil
}
