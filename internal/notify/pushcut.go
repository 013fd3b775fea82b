package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultPushcutURL is the Pushcut notification webhook.
const DefaultPushcutURL = "https://api.pushcut.io/privatecode/notifications/DogFeed"

// Pushcut sends messages as a GET to a Pushcut notification webhook,
// with the text in the query string.
type Pushcut struct {
	endpoint string
	client   *http.Client
}

// NewPushcut creates a sender for endpoint. Requests give up after timeout.
func NewPushcut(endpoint string, timeout time.Duration) *Pushcut {
	return &Pushcut{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns "pushcut".
func (p *Pushcut) Name() string { return "pushcut" }

// URL returns the request URL for text.
func (p *Pushcut) URL(text string) string {
	return p.endpoint + "?text=" + escape(text)
}

// Send performs the webhook call.
func (p *Pushcut) Send(ctx context.Context, m Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(m.Text), nil)
	if err != nil {
		return fmt.Errorf("build pushcut request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushcut: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushcut: unexpected status %s", resp.Status)
	}
	return nil
}

// escape query-escapes s with spaces as %20, which Pushcut shows verbatim.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
