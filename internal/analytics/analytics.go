package analytics

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Client posts capture events to a PostHog-compatible endpoint. Events are
// a side channel: they are emitted after the authoritative decision and a
// lost event never changes a response. Disabled (empty endpoint) clients
// are no-ops.
type Client struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Capture fires the event from a goroutine and returns immediately.
func (c *Client) Capture(event, distinctID string, properties map[string]any) {
	if c == nil || c.endpoint == "" {
		return
	}

	go c.send(event, distinctID, properties)
}

func (c *Client) send(event, distinctID string, properties map[string]any) {
	payload := map[string]any{
		"api_key":     c.apiKey,
		"event":       event,
		"distinct_id": distinctID,
		"properties":  properties,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Debug("analytics payload marshal failed", "error", err, "event", event)
		return
	}

	resp, err := c.httpc.Post(c.endpoint+"/capture", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("analytics capture failed", "error", err, "event", event)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Debug("analytics capture rejected", "status", resp.StatusCode, "event", event)
	}
}
