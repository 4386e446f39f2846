package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/warden/internal/alert"
)

func TestAlertClient_OpenWrappedShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "OPEN" {
			t.Errorf("status = %q, want OPEN", got)
		}
		_, _ = w.Write([]byte(`{"items": [
			{"id": "a1", "category": "fire", "severity": "critical", "occurred_at": "2026-08-24T12:00:05Z", "site_id": "s1"},
			{"id": "a2", "category": "blacklist_plate", "severity": "warning", "occurred_at": "2026-08-24T12:00:06Z", "site_id": "s1", "node_id": "n2"}
		]}`))
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, 100, log.Nop(), nil)
	records, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Category != alert.CategoryFire || records[0].Severity != alert.SeverityCritical {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].Scope.NodeID != "n2" {
		t.Errorf("record 1 node = %q, want n2", records[1].Scope.NodeID)
	}
}

func TestAlertClient_OpenBareArrayShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "a1", "category": "fire", "severity": "info", "occurred_at": "2026-08-24T12:00:05Z", "site_id": "s1"}
		]`))
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, 100, log.Nop(), nil)
	records, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a1" {
		t.Fatalf("records = %v, want one a1", records)
	}
}

func TestAlertClient_OpenPaginates(t *testing.T) {
	t.Parallel()

	const pageSize = 2
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			_, _ = fmt.Fprint(w, `[
				{"id": "a1", "severity": "info", "occurred_at": "2026-08-24T12:00:01Z"},
				{"id": "a2", "severity": "info", "occurred_at": "2026-08-24T12:00:02Z"}
			]`)
		case 2:
			_, _ = fmt.Fprint(w, `[
				{"id": "a3", "severity": "info", "occurred_at": "2026-08-24T12:00:03Z"}
			]`)
		default:
			t.Errorf("unexpected page %d", page)
			_, _ = fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, pageSize, log.Nop(), nil)
	records, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3 across two pages", len(records))
	}
}

func TestAlertClient_DropsMalformedRecords(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "", "severity": "info", "occurred_at": "2026-08-24T12:00:01Z"},
			{"id": "a2", "severity": "info", "occurred_at": "bogus"},
			{"id": "a3", "severity": "info", "occurred_at": "2026-08-24T12:00:03Z"}
		]`))
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, 100, log.Nop(), nil)
	records, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a3" {
		t.Fatalf("records = %v, want only a3", records)
	}
}

func TestAlertClient_Acknowledge(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, 100, log.Nop(), nil)
	if err := c.Acknowledge(context.Background(), "a-42"); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if gotPath != "/alerts/a-42/ack" {
		t.Errorf("path = %q, want /alerts/a-42/ack", gotPath)
	}
}

func TestAlertClient_AcknowledgeFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "still open", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, 100, log.Nop(), nil)
	if err := c.Acknowledge(context.Background(), "a-42"); err == nil {
		t.Error("expected error for 409 response")
	}
}
