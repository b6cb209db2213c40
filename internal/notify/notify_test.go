package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildStandalone(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

	payload := BuildStandalone("the analysis", now)

	if len(payload.Platforms) != 1 {
		t.Fatalf("Platforms = %d, want 1", len(payload.Platforms))
	}
	p := payload.Platforms[0]
	if p.PlatformID != "custom_analysis" {
		t.Errorf("PlatformID = %q", p.PlatformID)
	}
	if len(p.Titles) != 1 {
		t.Fatalf("Titles = %d, want 1", len(p.Titles))
	}
	entry := p.Titles[0]
	if entry.Title != "the analysis" {
		t.Errorf("Title = %q", entry.Title)
	}
	if entry.TimeDisplay != "2025-06-01 15:30" {
		t.Errorf("TimeDisplay = %q", entry.TimeDisplay)
	}
	if entry.Rank != 1 {
		t.Errorf("Rank = %d, want 1", entry.Rank)
	}
	if payload.RSSFeeds == nil || len(payload.RSSFeeds) != 0 {
		t.Errorf("RSSFeeds = %v, want empty non-nil slice", payload.RSSFeeds)
	}
}

func TestStandalone_Message(t *testing.T) {
	payload := BuildStandalone("analysis body", time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC))

	msg := payload.Message()
	if !strings.Contains(msg, "Custom Analysis") {
		t.Errorf("message %q should contain the platform name", msg)
	}
	if !strings.Contains(msg, "analysis body") {
		t.Errorf("message %q should contain the analysis text", msg)
	}
}

func TestWebhookFromEnv(t *testing.T) {
	t.Setenv("WEBHOOK_TEAM", "https://hooks.example/team")

	ch, ok := WebhookFromEnv("team", "WEBHOOK_TEAM")
	if !ok {
		t.Fatal("WebhookFromEnv should resolve a set variable")
	}
	if ch.Name != "team" || ch.WebhookURL != "https://hooks.example/team" {
		t.Errorf("channel = %+v", ch)
	}

	if _, ok := WebhookFromEnv("other", "WEBHOOK_UNSET_VAR"); ok {
		t.Error("WebhookFromEnv should report unset variables")
	}
}

func TestDispatchAll(t *testing.T) {
	var received atomic.Int32
	var mu sync.Mutex
	var gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding webhook body: %v", err)
		}
		mu.Lock()
		gotText = body["text"]
		mu.Unlock()
	}))
	defer server.Close()

	d := NewDispatcher([]Channel{
		{Name: "a", WebhookURL: server.URL},
		{Name: "b", WebhookURL: server.URL},
	})

	payload := BuildStandalone("hello", time.Now())
	results, err := d.DispatchAll(context.Background(), payload)
	if err != nil {
		t.Fatalf("DispatchAll() error: %v", err)
	}

	if received.Load() != 2 {
		t.Errorf("webhook received %d posts, want 2", received.Load())
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.OK {
			t.Errorf("channel %s failed: %s", r.Channel, r.Error)
		}
	}
	if !strings.Contains(gotText, "hello") {
		t.Errorf("posted text = %q, want analysis included", gotText)
	}
}

func TestDispatchAll_PartialFailure(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer okServer.Close()

	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad channel", http.StatusInternalServerError)
	}))
	defer failServer.Close()

	d := NewDispatcher([]Channel{
		{Name: "good", WebhookURL: okServer.URL},
		{Name: "bad", WebhookURL: failServer.URL},
	})

	results, err := d.DispatchAll(context.Background(), BuildStandalone("x", time.Now()))
	if err == nil {
		t.Fatal("DispatchAll() should fail when any channel fails")
	}

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Channel] = r
	}
	if !byName["good"].OK {
		t.Errorf("good channel should succeed: %+v", byName["good"])
	}
	if byName["bad"].OK {
		t.Error("bad channel should fail")
	}
	if !strings.Contains(byName["bad"].Error, "500") {
		t.Errorf("bad channel error = %q, want status included", byName["bad"].Error)
	}
}

func TestDispatchAll_NoChannels(t *testing.T) {
	d := NewDispatcher(nil)

	_, err := d.DispatchAll(context.Background(), BuildStandalone("x", time.Now()))
	if err == nil {
		t.Fatal("DispatchAll() should fail with no channels")
	}
}
