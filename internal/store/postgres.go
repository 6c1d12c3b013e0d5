// internal/store/postgres.go
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"city-events-sync/internal/model"
)

// Postgres implements Repository on a pgx connection pool. All queries are
// single-statement; the sync applies records one at a time with no batch
// transaction, so partial completion of a run is expected and harmless.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const eventColumns = `e.id, e.external_id, e.source, e.name, e.start_time, e.end_time,
	e.ticket_url, e.status, e.category, e.venue_id, v.name, e.image_url, e.published,
	e.last_synced_at, e.created_at, e.updated_at`

func (p *Postgres) GetEventByExternalID(ctx context.Context, externalID string) (model.Event, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		WHERE e.external_id = $1`, externalID)
	return scanEvent(row)
}

func (p *Postgres) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	// The unique index on external_id arbitrates concurrent manual and
	// scheduled runs: the losing writer becomes an update, not an error.
	row := p.pool.QueryRow(ctx, `
		WITH upserted AS (
			INSERT INTO events
				(external_id, source, name, start_time, end_time, ticket_url,
				 status, category, venue_id, image_url, published, last_synced_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
			ON CONFLICT (external_id) DO UPDATE SET
				name = EXCLUDED.name,
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				ticket_url = EXCLUDED.ticket_url,
				status = EXCLUDED.status,
				category = EXCLUDED.category,
				venue_id = EXCLUDED.venue_id,
				image_url = EXCLUDED.image_url,
				published = EXCLUDED.published,
				last_synced_at = now(),
				updated_at = now()
			RETURNING *
		)
		SELECT `+eventColumns+`
		FROM upserted e
		JOIN venues v ON v.id = e.venue_id`,
		ev.ExternalID, ev.Source, ev.Name, ev.StartTime, ev.EndTime, ev.TicketURL,
		string(ev.Status), ev.Category, ev.VenueID, ev.ImageURL, ev.Published)
	return scanEvent(row)
}

func (p *Postgres) UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	row := p.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE events SET
				name = $2,
				start_time = $3,
				end_time = $4,
				ticket_url = $5,
				status = $6,
				category = $7,
				venue_id = $8,
				image_url = $9,
				published = $10,
				last_synced_at = now(),
				updated_at = now()
			WHERE external_id = $1
			RETURNING *
		)
		SELECT `+eventColumns+`
		FROM updated e
		JOIN venues v ON v.id = e.venue_id`,
		ev.ExternalID, ev.Name, ev.StartTime, ev.EndTime, ev.TicketURL,
		string(ev.Status), ev.Category, ev.VenueID, ev.ImageURL, ev.Published)
	return scanEvent(row)
}

func (p *Postgres) FindOrCreateVenue(ctx context.Context, name string, addr model.VenueAddress) (model.Venue, error) {
	v, err := p.getVenueByName(ctx, name)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Venue{}, err
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO venues (name, street, street2, city, postal_code, state, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, street, street2, city, postal_code, state, country, created_at`,
		name, addr.Street, addr.Street2, addr.City, addr.PostalCode, addr.State, addr.Country)
	v, err = scanVenue(row)
	if errors.Is(err, ErrNotFound) {
		// Lost a concurrent insert race; the row exists now.
		return p.getVenueByName(ctx, name)
	}
	return v, err
}

func (p *Postgres) getVenueByName(ctx context.Context, name string) (model.Venue, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, name, street, street2, city, postal_code, state, country, created_at
		FROM venues
		WHERE name = $1`, name)
	return scanVenue(row)
}

func (p *Postgres) ListEvents(ctx context.Context, status model.Status) ([]model.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		WHERE $1 = '' OR e.status = $1
		ORDER BY e.start_time, e.external_id`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (p *Postgres) ListVenues(ctx context.Context) ([]model.Venue, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, street, street2, city, postal_code, state, country, created_at
		FROM venues
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func scanEvent(row pgx.Row) (model.Event, error) {
	var ev model.Event
	err := row.Scan(&ev.ID, &ev.ExternalID, &ev.Source, &ev.Name, &ev.StartTime, &ev.EndTime,
		&ev.TicketURL, &ev.Status, &ev.Category, &ev.VenueID, &ev.VenueName, &ev.ImageURL,
		&ev.Published, &ev.LastSyncedAt, &ev.DBCreatedAt, &ev.DBUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return ev, err
}

func scanVenue(row pgx.Row) (model.Venue, error) {
	var v model.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Street, &v.Street2, &v.City, &v.PostalCode,
		&v.State, &v.Country, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Venue{}, ErrNotFound
	}
	return v, err
}
