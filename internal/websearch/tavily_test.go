package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avolkov/byline/internal/model"
)

const tavilyBody = `{
	"results": [
		{"title": "Storage Doubles", "url": "https://www.reuters.com/storage",
		 "content": "Capacity doubled in two years.", "score": 0.87,
		 "published_date": "2024-05-02"},
		{"title": "Grid Notes", "url": "https://example.org/grid",
		 "content": "Short note.", "score": 0.62}
	]
}`

func TestClient_Search(t *testing.T) {
	var gotReq searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(tavilyBody))
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "tk", BaseURL: server.URL, Depth: "advanced"})
	if err != nil {
		t.Fatalf("Expected client created, got %v", err)
	}

	items, err := client.Search(context.Background(), "grid storage growth", 5)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if gotReq.APIKey != "tk" || gotReq.Query != "grid storage growth" {
		t.Errorf("Expected key and query in the body, got %+v", gotReq)
	}
	if gotReq.MaxResults != 5 || gotReq.SearchDepth != "advanced" {
		t.Errorf("Expected max_results and depth forwarded, got %+v", gotReq)
	}
	if gotReq.IncludeRawContent {
		t.Error("Expected raw content excluded")
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	first := items[0]
	if first.Origin != model.OriginWeb {
		t.Errorf("Expected web origin, got %s", first.Origin)
	}
	if first.Publisher != "reuters.com" {
		t.Errorf("Expected www-stripped publisher, got %s", first.Publisher)
	}
	if first.PublishedAt == nil || first.PublishedAt.Month() != time.May {
		t.Errorf("Expected parsed date, got %v", first.PublishedAt)
	}
	if items[1].Publisher != "example.org" {
		t.Errorf("Expected domain publisher, got %s", items[1].Publisher)
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(tavilyBody))
	}))
	defer server.Close()

	client, _ := NewClient(Options{
		APIKey: "tk", BaseURL: server.URL,
		MaxRetries: 2, RetryBase: time.Millisecond,
	})

	items, err := client.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
	if len(items) == 0 {
		t.Error("Expected items after retry")
	}
}

func TestClient_AuthErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := NewClient(Options{
		APIKey: "bad", BaseURL: server.URL,
		MaxRetries: 3, RetryBase: time.Millisecond,
	})

	if _, err := client.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("Expected an error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected a 401 not retried, got %d attempts", calls)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Error("Expected an error without an API key")
	}
}

func TestPublisherFromURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://www.nytimes.com/a", "nytimes.com"},
		{"https://example.org/b", "example.org"},
		{"not a url", "web"},
	}
	for _, tc := range cases {
		if got := publisherFromURL(tc.in); got != tc.want {
			t.Errorf("publisherFromURL(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
