package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/warden/internal/detection"
)

func TestDetectionClient_Query(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detections" {
			t.Errorf("path = %q, want /detections", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("site_id") != "s1" {
			t.Errorf("site_id = %q, want s1", q.Get("site_id"))
		}
		if q.Get("limit") != "200" {
			t.Errorf("limit = %q, want 200", q.Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"ingestion_id": 2, "entity_text": "gj 01 ab 1234", "confidence": 0.91, "classification": "verified", "timestamp_utc": "2026-08-24T10:05:00Z", "node_id": "cam-3"},
			{"ingestion_id": 3, "entity_text": "", "confidence": 0.5, "classification": "verified", "timestamp_utc": "2026-08-24T10:06:00Z", "node_id": "cam-3"},
			{"ingestion_id": 4, "entity_text": "KA05X1", "confidence": 0.4, "classification": "guessed", "timestamp_utc": "not-a-time", "node_id": "cam-1"}
		]`))
	}))
	defer srv.Close()

	c := NewDetectionClient(srv.URL, log.Nop(), nil)
	events, err := c.Query(context.Background(), DetectionQuery{SiteID: "s1", Limit: 200})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	// Blank entity text and unparsable timestamp are dropped, not fatal.
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.EntityKey != "GJ01AB1234" {
		t.Errorf("entity key = %q, want normalized GJ01AB1234", e.EntityKey)
	}
	if e.Classification != detection.ClassVerified {
		t.Errorf("classification = %q, want VERIFIED", e.Classification)
	}
	if !e.Timestamp.Equal(time.Date(2026, 8, 24, 10, 5, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v", e.Timestamp)
	}
	if e.SourceNode != "cam-3" {
		t.Errorf("source node = %q, want cam-3", e.SourceNode)
	}
}

func TestDetectionClient_Non200IsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewDetectionClient(srv.URL, log.Nop(), nil)
	if _, err := c.Query(context.Background(), DetectionQuery{}); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestDetectionClient_BadBodyIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	c := NewDetectionClient(srv.URL, log.Nop(), nil)
	if _, err := c.Query(context.Background(), DetectionQuery{}); err == nil {
		t.Error("expected decode error for non-array body")
	}
}
