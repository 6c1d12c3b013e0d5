// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/model"
	"city-events-sync/internal/store"
)

// stubRunner satisfies SyncRunner with a canned response.
type stubRunner struct {
	result model.SyncResult
	err    error
}

func (s *stubRunner) Run(ctx context.Context, trigger string) (model.SyncResult, error) {
	return s.result, s.err
}

// funcRunner delegates Run to a test-supplied function.
type funcRunner struct {
	run func(ctx context.Context) (model.SyncResult, error)
}

func (f *funcRunner) Run(ctx context.Context, trigger string) (model.SyncResult, error) {
	return f.run(ctx)
}

func setupRouter(t *testing.T, runner SyncRunner) (http.Handler, *store.Memory) {
	repo := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewRouter(repo, runner, logger), repo
}

func seedEvent(t *testing.T, repo *store.Memory, externalID string, status model.Status) {
	t.Helper()
	ctx := context.Background()
	v, err := repo.FindOrCreateVenue(ctx, "Test Venue", model.VenueAddress{})
	require.NoError(t, err)
	_, err = repo.CreateEvent(ctx, model.Event{
		ExternalID: externalID,
		Source:     "ticketmaster",
		Name:       "Seeded " + externalID,
		StartTime:  time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC),
		Status:     status,
		Category:   "Uncategorized",
		VenueID:    v.ID,
		VenueName:  v.Name,
	})
	require.NoError(t, err)
}

func TestHandler_TriggerSync(t *testing.T) {
	t.Run("returns the sync result", func(t *testing.T) {
		runner := &stubRunner{result: model.SyncResult{Created: 2, Updated: 1, Skipped: 3, Total: 6}}
		router, _ := setupRouter(t, runner)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got model.SyncResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, runner.result, got)
	})

	t.Run("caller disconnect does not cancel the run", func(t *testing.T) {
		runner := &funcRunner{run: func(ctx context.Context) (model.SyncResult, error) {
			if err := ctx.Err(); err != nil {
				return model.SyncResult{}, &apperrors.TransportError{Err: err}
			}
			return model.SyncResult{Total: 1, Skipped: 1}, nil
		}}
		router, _ := setupRouter(t, runner)

		reqCtx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/v1/sync", nil).WithContext(reqCtx)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing credential maps to 503", func(t *testing.T) {
		runner := &stubRunner{err: &apperrors.MissingCredentialError{Provider: "ticketmaster"}}
		router, _ := setupRouter(t, runner)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("upstream failures map to 502", func(t *testing.T) {
		for _, err := range []error{
			&apperrors.UpstreamError{StatusCode: 500, Body: "boom"},
			&apperrors.RateLimitError{Page: 3, Attempts: 4},
			&apperrors.TransportError{Err: context.DeadlineExceeded},
		} {
			runner := &stubRunner{err: err}
			router, _ := setupRouter(t, runner)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync", nil))

			assert.Equal(t, http.StatusBadGateway, rec.Code, "error %v", err)
		}
	})
}

func TestHandler_ListEvents(t *testing.T) {
	router, repo := setupRouter(t, &stubRunner{})
	seedEvent(t, repo, "ev-1", model.StatusOnSale)
	seedEvent(t, repo, "ev-2", model.StatusCancelled)

	t.Run("lists all events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []model.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?status=cancelled", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []model.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "ev-2", got[0].ExternalID)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?status=sold_out", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GetEvent(t *testing.T) {
	router, repo := setupRouter(t, &stubRunner{})
	seedEvent(t, repo, "ev-1", model.StatusOnSale)

	t.Run("returns an event by external id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/ev-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got model.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Seeded ev-1", got.Name)
	})

	t.Run("unknown external id is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/no-such", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_ListVenues(t *testing.T) {
	router, repo := setupRouter(t, &stubRunner{})
	seedEvent(t, repo, "ev-1", model.StatusOnSale)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/venues", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.Venue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Test Venue", got[0].Name)
}

func TestHandler_Health(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
