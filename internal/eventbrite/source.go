// internal/eventbrite/source.go
package eventbrite

import (
	"context"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/source"
)

// Source adapts the client to the syncer's source interface for one fixed
// organization.
type Source struct {
	client *Client
	orgID  string
	token  string
}

func NewSource(client *Client, orgID, token string) *Source {
	return &Source{client: client, orgID: orgID, token: token}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) Fetch(ctx context.Context) ([]source.Record, error) {
	if s.token == "" || s.orgID == "" {
		return nil, &apperrors.MissingCredentialError{Provider: SourceName}
	}

	raws, err := s.client.FetchOrgEvents(ctx, s.orgID)
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
