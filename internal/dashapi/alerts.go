package dashapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (a *API) handleAlerts(w http.ResponseWriter, r *http.Request) {
	siteID := r.URL.Query().Get("site_id")
	nodeID := r.URL.Query().Get("node_id")

	v := a.feed.Snapshot(siteID, nodeID)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("warden.alerts.count", len(v.Alerts)),
		attribute.Bool("warden.alerts.stale", v.Stale),
	)

	a.writeJSON(r.Context(), w, http.StatusOK, v)
}

func (a *API) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, `{"error":"alert id is required"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("warden.alert.id", id))

	// Suppression is local and immediate; the upstream acknowledge runs
	// best-effort in the background, so the handler never waits on it.
	a.feed.Acknowledge(r.Context(), id)

	a.writeJSON(r.Context(), w, http.StatusAccepted, map[string]string{"id": id})
}

func (a *API) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, `{"error":"alert id is required"}`, http.StatusBadRequest)
		return
	}

	a.feed.Restore(id)

	a.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"id": id})
}
