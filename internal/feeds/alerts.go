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

	"github.com/linnemanlabs/warden/internal/alert"
	"github.com/linnemanlabs/warden/internal/triage"
)

// maxAlertPages caps pagination so a misbehaving backend cannot spin a
// poll forever.
const maxAlertPages = 20

const defaultPageSize = 100

// alertWire is the open-alert feed's record shape.
type alertWire struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	OccurredAt string            `json:"occurred_at"`
	SiteID     string            `json:"site_id"`
	NodeID     string            `json:"node_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AlertClient reads the open-alert feed and sends acknowledgements. It
// implements triage.AlertSource.
type AlertClient struct {
	endpoint   string
	pageSize   int
	httpClient *http.Client
	logger     log.Logger
	metrics    *triage.Metrics
}

// NewAlertClient creates a client for the alert feed endpoint.
func NewAlertClient(endpoint string, pageSize int, logger log.Logger, metrics *triage.Metrics) *AlertClient {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &AlertClient{
		endpoint:   endpoint,
		pageSize:   pageSize,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metrics,
	}
}

var _ triage.AlertSource = (*AlertClient)(nil)

// Open fetches all open alerts, walking pages until a short page. The feed
// serves either `{"items": [...]}` or a bare array; both are accepted.
func (c *AlertClient) Open(ctx context.Context) ([]alert.Record, error) {
	var all []alert.Record
	for page := 1; page <= maxAlertPages; page++ {
		items, err := c.openPage(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < c.pageSize {
			break
		}
	}
	return all, nil
}

func (c *AlertClient) openPage(ctx context.Context, page int) ([]alert.Record, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = path.Join(u.Path, "alerts")

	params := u.Query()
	params.Set("status", "OPEN")
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: endpoint is from trusted config
	if err != nil {
		return nil, fmt.Errorf("alert feed query failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alert feed returned %d: %s", resp.StatusCode, string(body))
	}

	wires, err := decodeAlertBody(body)
	if err != nil {
		return nil, err
	}

	records := make([]alert.Record, 0, len(wires))
	for _, w := range wires {
		ts, tsErr := time.Parse(time.RFC3339Nano, w.OccurredAt)
		if tsErr != nil {
			ts, tsErr = time.Parse(time.RFC3339, w.OccurredAt)
		}
		if w.ID == "" || tsErr != nil {
			if c.metrics != nil {
				c.metrics.RecordsDropped.WithLabelValues("alerts").Inc()
			}
			c.logger.Warn(ctx, "dropping malformed alert record",
				"id", w.ID, "occurred_at", w.OccurredAt)
			continue
		}
		records = append(records, alert.Record{
			ID:         w.ID,
			Category:   alert.Category(w.Category),
			Severity:   alert.ParseSeverity(w.Severity),
			OccurredAt: ts,
			Scope:      alert.Scope{SiteID: w.SiteID, NodeID: w.NodeID},
			Metadata:   w.Metadata,
		})
	}
	return records, nil
}

// decodeAlertBody accepts both feed shapes: an items wrapper or a bare array.
func decodeAlertBody(body []byte) ([]alertWire, error) {
	var wrapped struct {
		Items []alertWire `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var bare []alertWire
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("decode alert feed: %w", err)
	}
	return bare, nil
}

// Acknowledge posts a single acknowledge for an alert id. One call per id,
// fire-and-forget from the caller's perspective.
func (c *AlertClient) Acknowledge(ctx context.Context, id string) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = path.Join(u.Path, "alerts", url.PathEscape(id), "ack")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: endpoint is from trusted config, id is path-escaped
	if err != nil {
		return fmt.Errorf("acknowledge failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("acknowledge returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
