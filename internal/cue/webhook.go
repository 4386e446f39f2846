package cue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const httpTimeout = 5 * time.Second

// WebhookSink posts each tone as JSON to a configured webhook, typically a
// dashboard push bridge or chat integration.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a sink for the given webhook URL.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Play posts the tone. The payload carries everything a receiver needs to
// render the cue without calling back.
func (w *WebhookSink) Play(ctx context.Context, t Tone) error {
	body, err := json.Marshal(map[string]any{
		"cue_id":      t.ID,
		"severity":    t.Severity,
		"freq_hz":     t.FreqHz,
		"duration_ms": t.Duration.Milliseconds(),
		"emitted_at":  t.EmittedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("cue: marshal tone: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cue: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req) //nolint:gosec // G704: url is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("cue: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cue: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
