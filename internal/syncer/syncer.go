// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"city-events-sync/internal/metrics"
	"city-events-sync/internal/model"
	"city-events-sync/internal/source"
	"city-events-sync/internal/store"
)

const (
	dispositionCreated = "created"
	dispositionUpdated = "updated"
	dispositionSkipped = "skipped"
)

// Syncer orchestrates the fetch-map-upsert pipeline. Both the periodic
// ticker and the manual HTTP trigger call the same Run entry point;
// overlapping invocations collapse into one through singleflight.
type Syncer struct {
	repo     store.Repository
	sources  []source.Source
	logger   *slog.Logger
	interval time.Duration
	group    singleflight.Group
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(repo store.Repository, sources []source.Source, logger *slog.Logger, interval time.Duration) *Syncer {
	return &Syncer{
		repo:     repo,
		sources:  sources,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the continuous synchronization process.
func (s *Syncer) Start(ctx context.Context) {
	s.logger.Info("Starting syncer", "interval", s.interval.String(), "sources", len(s.sources))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runScheduled(ctx) // Initial sync

	for {
		select {
		case <-ticker.C:
			s.runScheduled(ctx)
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

func (s *Syncer) runScheduled(ctx context.Context) {
	res, err := s.Run(ctx, "scheduled")
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Scheduled sync failed", "error", err,
			"created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
	}
}

// Run performs one full sync pass and returns its summary. It is
// idempotent: against an unchanged upstream every record lands in the skip
// count. A concurrent Run shares the in-flight pass instead of racing it.
func (s *Syncer) Run(ctx context.Context, trigger string) (model.SyncResult, error) {
	v, err, _ := s.group.Do("sync", func() (interface{}, error) {
		return s.run(ctx, trigger)
	})
	res, _ := v.(model.SyncResult)
	return res, err
}

func (s *Syncer) run(ctx context.Context, trigger string) (model.SyncResult, error) {
	res := model.SyncResult{StartedAt: time.Now().UTC()}

	for _, src := range s.sources {
		logger := s.logger.With("source", src.Name(), "trigger", trigger)

		recs, err := src.Fetch(ctx)
		if err != nil {
			// Fetcher-level failures abort the run. Records already
			// applied from earlier sources stay applied.
			res.Total = res.Created + res.Updated + res.Skipped
			metrics.SyncRuns.WithLabelValues(trigger, "error").Inc()
			return res, fmt.Errorf("fetch from %s: %w", src.Name(), err)
		}
		logger.Info("Fetched records", "count", len(recs))

		for _, rec := range recs {
			if rec.MapErr != nil {
				res.Skipped++
				metrics.Records.WithLabelValues(src.Name(), dispositionSkipped).Inc()
				logger.Warn("Skipping unmappable record", "error", rec.MapErr)
				continue
			}

			disposition, err := s.upsertEvent(ctx, rec.Event)
			if err != nil {
				res.Total = res.Created + res.Updated + res.Skipped
				metrics.SyncRuns.WithLabelValues(trigger, "error").Inc()
				return res, fmt.Errorf("upsert event %s: %w", rec.Event.ExternalID, err)
			}
			metrics.Records.WithLabelValues(src.Name(), disposition).Inc()
			switch disposition {
			case dispositionCreated:
				res.Created++
			case dispositionUpdated:
				res.Updated++
			default:
				res.Skipped++
			}
		}
	}

	res.Total = res.Created + res.Updated + res.Skipped
	metrics.SyncRuns.WithLabelValues(trigger, "ok").Inc()
	s.logger.Info("Sync finished", "trigger", trigger,
		"created", res.Created, "updated", res.Updated, "skipped", res.Skipped,
		"total", res.Total, "started_at", res.StartedAt.Format(time.RFC3339))
	return res, nil
}

// upsertEvent applies one mapped event: resolve the venue by exact name,
// then create the event, update it when any mapped field differs, or skip
// it when nothing changed.
func (s *Syncer) upsertEvent(ctx context.Context, ev model.Event) (string, error) {
	venue, err := s.repo.FindOrCreateVenue(ctx, ev.VenueName, ev.VenueAddress)
	if err != nil {
		return "", err
	}
	ev.VenueID = venue.ID

	existing, err := s.repo.GetEventByExternalID(ctx, ev.ExternalID)
	if errors.Is(err, store.ErrNotFound) {
		if _, err := s.repo.CreateEvent(ctx, ev); err != nil {
			return "", err
		}
		return dispositionCreated, nil
	}
	if err != nil {
		return "", err
	}

	if !changed(existing, ev) {
		return dispositionSkipped, nil
	}
	if _, err := s.repo.UpdateEvent(ctx, ev); err != nil {
		return "", err
	}
	return dispositionUpdated, nil
}

// changed compares the mutable fields of a stored event against a freshly
// mapped one.
func changed(existing, mapped model.Event) bool {
	return existing.Name != mapped.Name ||
		!existing.StartTime.Equal(mapped.StartTime) ||
		!existing.EndTime.Equal(mapped.EndTime) ||
		existing.TicketURL != mapped.TicketURL ||
		existing.Status != mapped.Status ||
		existing.Category != mapped.Category ||
		existing.VenueID != mapped.VenueID ||
		existing.ImageURL != mapped.ImageURL ||
		existing.Published != mapped.Published
}
