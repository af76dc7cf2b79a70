package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"searchshell/internal/config"
	"searchshell/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Options{Level: logging.LevelNone, Output: io.Discard})
}

func newTestClient(t *testing.T, keys []string, handler http.HandlerFunc) (*BraveClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{BraveKeys: config.NewKeyRotator(keys)}
	client := NewBraveClient(cfg, testLogger())
	client.baseURL = srv.URL
	return client, srv
}

const sampleBody = `{"web":{"results":[
	{"title":"Paris Weather","url":"https://example.com/paris","description":"Sunny, 24C."},
	{"title":"Forecast","url":"https://example.com/forecast","description":"Clear skies all week."}
]}}`

func TestFetchContext_FormatsResults(t *testing.T) {
	var gotCount, gotKey string
	client, _ := newTestClient(t, []string{"brave-key"}, func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		gotKey = r.Header.Get("X-Subscription-Token")
		io.WriteString(w, sampleBody)
	})

	block, err := client.FetchContext(context.Background(), "weather in Paris", 3)
	if err != nil {
		t.Fatalf("FetchContext() unexpected error: %v", err)
	}

	if gotCount != "3" {
		t.Errorf("count param = %q, want 3", gotCount)
	}
	if gotKey != "brave-key" {
		t.Errorf("subscription token = %q", gotKey)
	}

	for _, frag := range []string{
		"Source: Paris Weather",
		"URL: https://example.com/paris",
		"Content:\nSunny, 24C.",
		strings.Repeat("=", 50),
	} {
		if !strings.Contains(block, frag) {
			t.Errorf("context block missing %q:\n%s", frag, block)
		}
	}
}

func TestFetchContext_EmptyResults(t *testing.T) {
	client, _ := newTestClient(t, []string{"brave-key"}, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"web":{"results":[]}}`)
	})

	block, err := client.FetchContext(context.Background(), "no hits", 5)
	if err != nil {
		t.Fatalf("FetchContext() unexpected error: %v", err)
	}
	if block != "" {
		t.Errorf("FetchContext() = %q, want empty block for no results", block)
	}
}

func TestFetchContext_CacheHit(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, []string{"brave-key"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, sampleBody)
	})

	ctx := context.Background()
	first, err := client.FetchContext(ctx, "weather in Paris", 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.FetchContext(ctx, "weather in Paris", 5)
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("server hit %d times, want 1 (second call served from cache)", calls)
	}
	if first != second {
		t.Error("cached block differs from original")
	}
}

func TestFetchContext_KeyRotationOnRateLimit(t *testing.T) {
	var keysSeen []string
	client, _ := newTestClient(t, []string{"key-a", "key-b"}, func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Subscription-Token")
		keysSeen = append(keysSeen, key)
		if key == "key-a" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, sampleBody)
	})

	if _, err := client.FetchContext(context.Background(), "weather", 5); err != nil {
		t.Fatalf("FetchContext() unexpected error after rotation: %v", err)
	}

	if len(keysSeen) != 2 || keysSeen[0] != "key-a" || keysSeen[1] != "key-b" {
		t.Errorf("keysSeen = %v, want failover from key-a to key-b", keysSeen)
	}
}

func TestFetchContext_KeysExhausted(t *testing.T) {
	client, _ := newTestClient(t, []string{"only-key"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchContext(context.Background(), "weather", 5)
	if err == nil {
		t.Fatal("FetchContext() expected error when all keys fail")
	}
	if !strings.Contains(err.Error(), "no more search API keys") {
		t.Errorf("error = %v, want exhausted-keys message", err)
	}
}

func TestFetchContext_NonRotatableStatus(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, []string{"key-a", "key-b"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.FetchContext(context.Background(), "weather", 5); err == nil {
		t.Fatal("FetchContext() expected error")
	}
	if calls != 1 {
		t.Errorf("server hit %d times, want 1 (500 should not rotate keys)", calls)
	}
}
