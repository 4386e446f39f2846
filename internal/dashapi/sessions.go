package dashapi

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/warden/internal/session"
)

type sessionsResponse struct {
	Sessions    []session.Session `json:"sessions"`
	Stale       bool              `json:"stale"`
	LastError   string            `json:"last_error,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

func (a *API) handleSessions(w http.ResponseWriter, r *http.Request) {
	v := a.sessions.Snapshot()

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("warden.sessions.count", len(v.Sessions)),
		attribute.Bool("warden.sessions.stale", v.Stale),
	)

	a.writeJSON(r.Context(), w, http.StatusOK, sessionsResponse{
		Sessions:    v.Sessions,
		Stale:       v.Stale,
		LastError:   v.LastError,
		GeneratedAt: v.GeneratedAt,
	})
}

func (a *API) handleUnconfirmedSessions(w http.ResponseWriter, r *http.Request) {
	v := a.sessions.Snapshot()

	a.writeJSON(r.Context(), w, http.StatusOK, sessionsResponse{
		Sessions:    v.Unconfirmed,
		Stale:       v.Stale,
		LastError:   v.LastError,
		GeneratedAt: v.GeneratedAt,
	})
}
