// Package dashapi serves the dashboard's HTTP surface: session views,
// the triaged alert feed, acknowledgements, and the triage policy.
package dashapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/warden/internal/ingest"
	"github.com/linnemanlabs/warden/internal/policy"
	"github.com/linnemanlabs/warden/internal/triage"
)

// SessionSource serves the reconstructed session snapshot.
type SessionSource interface {
	Snapshot() ingest.SessionView
}

// AlertFeed serves the triaged alert view and takes acknowledgements.
type AlertFeed interface {
	Snapshot(siteID, nodeID string) triage.View
	Acknowledge(ctx context.Context, id string)
	Restore(id string)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger   log.Logger
	sessions SessionSource
	feed     AlertFeed
	store    policy.Store
	bus      *policy.Bus
}

// New creates a new API handler.
func New(logger log.Logger, sessions SessionSource, feed AlertFeed, store policy.Store, bus *policy.Bus) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if sessions == nil {
		panic(xerrors.New("session source is required"))
	}
	if feed == nil {
		panic(xerrors.New("alert feed is required"))
	}
	if store == nil {
		panic(xerrors.New("policy store is required"))
	}
	return &API{
		logger:   logger,
		sessions: sessions,
		feed:     feed,
		store:    store,
		bus:      bus,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sessions", a.handleSessions)
		r.Get("/sessions/unconfirmed", a.handleUnconfirmedSessions)
		r.Get("/alerts", a.handleAlerts)
		r.Post("/alerts/{id}/ack", a.handleAcknowledge)
		r.Post("/alerts/{id}/restore", a.handleRestore)
		r.Get("/policy", a.handleGetPolicy)
		r.Put("/policy", a.handlePutPolicy)
	})
}

func (a *API) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error(ctx, err, "failed to encode response")
	}
}
