// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"city-events-sync/internal/model"
)

// Memory implements Repository on in-process maps. It mirrors the Postgres
// semantics, including the create-falls-back-to-update behavior on an
// external_id collision, and is what the unit tests run against.
type Memory struct {
	mu          sync.Mutex
	events      map[string]model.Event // keyed by external id
	venues      map[string]model.Venue // keyed by name
	nextEventID int64
	nextVenueID int64
}

func NewMemory() *Memory {
	return &Memory{
		events: make(map[string]model.Event),
		venues: make(map[string]model.Venue),
	}
}

func (m *Memory) GetEventByExternalID(_ context.Context, externalID string) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[externalID]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return ev, nil
}

func (m *Memory) CreateEvent(_ context.Context, ev model.Event) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.events[ev.ExternalID]; ok {
		// Conflict fallback: overwrite the existing row.
		ev.ID = existing.ID
		ev.DBCreatedAt = existing.DBCreatedAt
	} else {
		m.nextEventID++
		ev.ID = m.nextEventID
		ev.DBCreatedAt = now
	}
	ev.LastSyncedAt = now
	ev.DBUpdatedAt = now
	m.events[ev.ExternalID] = ev
	return ev, nil
}

func (m *Memory) UpdateEvent(_ context.Context, ev model.Event) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.events[ev.ExternalID]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	now := time.Now().UTC()
	ev.ID = existing.ID
	ev.DBCreatedAt = existing.DBCreatedAt
	ev.LastSyncedAt = now
	ev.DBUpdatedAt = now
	m.events[ev.ExternalID] = ev
	return ev, nil
}

func (m *Memory) FindOrCreateVenue(_ context.Context, name string, addr model.VenueAddress) (model.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.venues[name]; ok {
		return v, nil
	}
	m.nextVenueID++
	v := model.Venue{
		ID:         m.nextVenueID,
		Name:       name,
		Street:     addr.Street,
		Street2:    addr.Street2,
		City:       addr.City,
		PostalCode: addr.PostalCode,
		State:      addr.State,
		Country:    addr.Country,
		CreatedAt:  time.Now().UTC(),
	}
	m.venues[name] = v
	return v, nil
}

func (m *Memory) ListEvents(_ context.Context, status model.Status) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []model.Event
	for _, ev := range m.events {
		if status != "" && ev.Status != status {
			continue
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].ExternalID < events[j].ExternalID
	})
	return events, nil
}

func (m *Memory) ListVenues(_ context.Context) ([]model.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var venues []model.Venue
	for _, v := range m.venues {
		venues = append(venues, v)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Name < venues[j].Name })
	return venues, nil
}
