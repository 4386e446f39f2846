package dashapi

import (
	"encoding/json"
	"net/http"

	"github.com/linnemanlabs/warden/internal/policy"
)

func (a *API) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	p, ok, err := a.store.Load(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to load triage policy")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		p = policy.Defaults()
	}

	a.writeJSON(r.Context(), w, http.StatusOK, p)
}

func (a *API) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	var p policy.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if err := p.Validate(); err != nil {
		a.logger.Info(r.Context(), "rejected policy update", "error", err)
		a.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	if err := a.store.Save(r.Context(), p); err != nil {
		a.logger.Error(r.Context(), err, "failed to save triage policy")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	// Mounted feeds pick the change up through the bus without re-reading
	// durable storage.
	if a.bus != nil {
		a.bus.Publish(p)
	}

	a.logger.Info(r.Context(), "triage policy updated",
		"min_severity", p.MinSeverity,
		"quiet_hours_enabled", p.QuietHours.Enabled,
		"sound_enabled", p.SoundEnabled,
		"visual_enabled", p.VisualEnabled,
	)

	a.writeJSON(r.Context(), w, http.StatusOK, p)
}
