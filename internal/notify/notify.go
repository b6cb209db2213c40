// Package notify pushes analysis results to configured webhook channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the per-webhook HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Standalone is the display payload for the analysis result. The shape
// mirrors the collector's report payload so downstream renderers can treat
// the analysis as one more platform.
type Standalone struct {
	Platforms []Platform `json:"platforms"`
	RSSFeeds  []Feed     `json:"rss_feeds"`
}

// Platform groups titles under one display section.
type Platform struct {
	PlatformID   string       `json:"platform_id"`
	PlatformName string       `json:"platform_name"`
	Titles       []TitleEntry `json:"titles"`
}

// TitleEntry is one displayed item.
type TitleEntry struct {
	Title       string `json:"title"`
	TimeDisplay string `json:"time_display"`
	Rank        int    `json:"rank"`
}

// Feed is a placeholder for RSS sections; the analysis payload carries none.
type Feed struct {
	Name string `json:"name"`
}

// BuildStandalone wraps an analysis text in the display payload.
func BuildStandalone(analysisText string, now time.Time) *Standalone {
	return &Standalone{
		Platforms: []Platform{
			{
				PlatformID:   "custom_analysis",
				PlatformName: "Custom Analysis",
				Titles: []TitleEntry{
					{
						Title:       analysisText,
						TimeDisplay: now.Format("2006-01-02 15:04"),
						Rank:        1,
					},
				},
			},
		},
		RSSFeeds: []Feed{},
	}
}

// Message renders the payload as the text sent to webhooks.
func (s *Standalone) Message() string {
	var buf bytes.Buffer
	for _, p := range s.Platforms {
		for _, t := range p.Titles {
			fmt.Fprintf(&buf, "%s (%s)\n%s\n", p.PlatformName, t.TimeDisplay, t.Title)
		}
	}
	return buf.String()
}

// Channel is a resolved notification target.
type Channel struct {
	Name       string
	WebhookURL string
}

// WebhookFromEnv resolves a channel's webhook URL from the named env var.
// Returns false when the variable is unset or empty, which skips the channel.
func WebhookFromEnv(name, envVar string) (Channel, bool) {
	url := os.Getenv(envVar)
	if url == "" {
		return Channel{}, false
	}
	return Channel{Name: name, WebhookURL: url}, true
}

// Result is the outcome of one channel dispatch.
type Result struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher posts messages to all configured channels.
type Dispatcher struct {
	channels []Channel
	client   *http.Client
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(channels []Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// DispatchAll posts the payload's message to every channel concurrently and
// returns one result per channel, in configuration order. The error is
// non-nil if any channel failed.
func (d *Dispatcher) DispatchAll(ctx context.Context, payload *Standalone) ([]Result, error) {
	if len(d.channels) == 0 {
		return nil, fmt.Errorf("no notification channels configured")
	}

	message := payload.Message()
	results := make([]Result, len(d.channels))

	// Every channel is attempted even when one fails, so no group context.
	var g errgroup.Group

	for i, ch := range d.channels {
		g.Go(func() error {
			err := d.post(ctx, ch.WebhookURL, message)

			results[i] = Result{Channel: ch.Name, OK: err == nil}
			if err != nil {
				results[i].Error = err.Error()
			}
			return err
		})
	}

	err := g.Wait()
	return results, err
}

// post sends one message to a webhook as a {"text": ...} payload.
func (d *Dispatcher) post(ctx context.Context, webhookURL, message string) error {
	payload := map[string]string{"text": message}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
