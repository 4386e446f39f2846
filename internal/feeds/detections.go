// Package feeds holds the HTTP clients for the external detection and alert
// feeds. The clients are thin: they query, decode, drop malformed records,
// and hand clean snapshots to the engine. Retry policy lives with the
// poller (the next tick), not here.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/warden/internal/detection"
	"github.com/linnemanlabs/warden/internal/triage"
)

const maxResponseBytes = 5 << 20 // 5 MB

// DetectionQuery narrows a detection feed read.
type DetectionQuery struct {
	SiteID         string
	NodeID         string
	Classification string
	Limit          int
	From           time.Time
	To             time.Time
}

// detectionWire is the feed's record shape. timestamp_utc is authoritative;
// timestamp_local is display-only and carried through untouched.
type detectionWire struct {
	IngestionID    int64   `json:"ingestion_id"`
	EntityText     string  `json:"entity_text"`
	Confidence     float64 `json:"confidence"`
	Classification string  `json:"classification"`
	TimestampUTC   string  `json:"timestamp_utc"`
	TimestampLocal string  `json:"timestamp_local,omitempty"`
	NodeID         string  `json:"node_id"`
}

// DetectionClient reads the ANPR detection feed.
type DetectionClient struct {
	endpoint   string
	httpClient *http.Client
	logger     log.Logger
	metrics    *triage.Metrics
}

// NewDetectionClient creates a client for the detection feed endpoint.
//
// No client timeout is set: the poller's single-flight guard already
// self-limits request rate during backend stalls, and an imposed timeout
// would just turn a slow answer into a dropped one.
func NewDetectionClient(endpoint string, logger log.Logger, metrics *triage.Metrics) *DetectionClient {
	if logger == nil {
		logger = log.Nop()
	}
	return &DetectionClient{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metrics,
	}
}

// Query fetches detection events matching q. Individual malformed records
// are dropped and counted; they never abort the batch.
func (c *DetectionClient) Query(ctx context.Context, q DetectionQuery) ([]detection.Event, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = path.Join(u.Path, "detections")

	params := u.Query()
	if q.SiteID != "" {
		params.Set("site_id", q.SiteID)
	}
	if q.NodeID != "" {
		params.Set("node_id", q.NodeID)
	}
	if q.Classification != "" {
		params.Set("classification", q.Classification)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(time.RFC3339Nano))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.UTC().Format(time.RFC3339Nano))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: endpoint is from trusted config, query values are url-encoded
	if err != nil {
		return nil, fmt.Errorf("detection feed query failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection feed returned %d: %s", resp.StatusCode, string(body))
	}

	var wires []detectionWire
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, fmt.Errorf("decode detection feed: %w", err)
	}

	events := make([]detection.Event, 0, len(wires))
	for _, w := range wires {
		ts, err := time.Parse(time.RFC3339Nano, w.TimestampUTC)
		if err != nil {
			ts, err = time.Parse(time.RFC3339, w.TimestampUTC)
		}
		key := detection.NormalizeKey(w.EntityText)
		if err != nil || key == "" {
			if c.metrics != nil {
				c.metrics.RecordsDropped.WithLabelValues("detections").Inc()
			}
			c.logger.Warn(ctx, "dropping malformed detection record",
				"entity_text", w.EntityText, "timestamp_utc", w.TimestampUTC)
			continue
		}
		events = append(events, detection.Event{
			IngestionID:    w.IngestionID,
			EntityKey:      key,
			Timestamp:      ts,
			LocalTime:      w.TimestampLocal,
			Confidence:     w.Confidence,
			Classification: detection.ParseClassification(w.Classification),
			SourceNode:     w.NodeID,
		})
	}
	return events, nil
}
