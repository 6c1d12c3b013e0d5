// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/model"
	"city-events-sync/internal/store"
)

// SyncRunner triggers one sync pass; satisfied by syncer.Syncer.
type SyncRunner interface {
	Run(ctx context.Context, trigger string) (model.SyncResult, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db     store.Repository
	syncer SyncRunner
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db store.Repository, syncer SyncRunner, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:     db,
		syncer: syncer,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sync", h.triggerSync)
		r.Get("/events", h.listEvents)
		r.Get("/events/{externalID}", h.getEvent)
		r.Get("/venues", h.listVenues)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// triggerSync runs a sync pass now and returns its summary.
// POST /v1/sync
//
// Once started, a sync runs to completion or failure. The run is detached
// from the request's cancellation so a caller disconnect cannot abort it
// mid-pass, nor kill a scheduled run that collapsed into this one.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncer.Run(context.WithoutCancel(r.Context()), "manual")
	if err != nil {
		h.logger.Error("Manual sync failed", "error", err)

		var missing *apperrors.MissingCredentialError
		var rateLimited *apperrors.RateLimitError
		var upstream *apperrors.UpstreamError
		var transport *apperrors.TransportError
		switch {
		case errors.As(err, &missing):
			respondWithError(w, http.StatusServiceUnavailable, missing.Error())
		case errors.As(err, &rateLimited), errors.As(err, &upstream), errors.As(err, &transport):
			respondWithError(w, http.StatusBadGateway, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// listEvents returns synced events, optionally filtered by status.
// GET /v1/events?status=on_sale
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondWithError(w, http.StatusBadRequest,
			"Invalid 'status' parameter. Must be one of: on_sale, cancelled, postponed, unknown.")
		return
	}

	events, err := h.db.ListEvents(r.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list events", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	respondWithJSON(w, http.StatusOK, events)
}

// getEvent returns one event by its external id.
// GET /v1/events/{externalID}
func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "externalID")

	ev, err := h.db.GetEventByExternalID(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.logger.Error("Failed to get event", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, ev)
}

// listVenues returns all venues referenced by synced events.
// GET /v1/venues
func (h *Handler) listVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.db.ListVenues(r.Context())
	if err != nil {
		h.logger.Error("Failed to list venues", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if venues == nil {
		venues = []model.Venue{}
	}

	respondWithJSON(w, http.StatusOK, venues)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
