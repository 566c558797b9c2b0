package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Transport delivers one event. Swapped for a fake in tests.
type Transport interface {
	Send(ctx context.Context, kind Kind, event Event) error
}

// sendTimeout bounds a single webhook call. The receiving side is an
// external automation service over the public internet; anything slower
// than this is treated as failed.
const sendTimeout = 3 * time.Second

// WebhookTransport POSTs events as JSON to one of two configured URLs.
type WebhookTransport struct {
	client       *http.Client
	submittedURL string
	approvedURL  string
}

func NewWebhookTransport(submittedURL, approvedURL string) *WebhookTransport {
	return &WebhookTransport{
		client:       &http.Client{Timeout: sendTimeout},
		submittedURL: submittedURL,
		approvedURL:  approvedURL,
	}
}

func (t *WebhookTransport) Send(ctx context.Context, kind Kind, event Event) error {
	url := t.submittedURL
	if kind == KindApproved {
		url = t.approvedURL
	}
	if url == "" {
		// Endpoint not configured; nothing to deliver.
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
