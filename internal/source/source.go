// internal/source/source.go
package source

import (
	"context"

	"city-events-sync/internal/model"
)

// Record is a single fetched event after mapping. MapErr is non-nil when
// the raw record could not be normalized; the upserter counts it as a skip.
type Record struct {
	Event  model.Event
	MapErr error
}

// Source is one upstream event provider. Fetch performs the full paged
// fetch and per-record mapping for one sync pass; a returned error means
// the fetch failed wholesale and no partial records are delivered.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Record, error)
}
