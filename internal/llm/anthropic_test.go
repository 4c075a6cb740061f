package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func anthropicServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Expected decodable request, got %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Expected one user message, got %+v", req.Messages)
		}

		resp := anthropicResponse{Model: req.Model}
		resp.Content = []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{{Type: "text", Text: text}}
		resp.Usage.InputTokens = 50
		resp.Usage.OutputTokens = 100
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestAnthropicProvider_Synthesize(t *testing.T) {
	server := anthropicServer(t, "  generated outline  ")
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Expected provider created, got %v", err)
	}

	resp, err := provider.Synthesize(context.Background(), SynthesisRequest{
		System: "system prompt",
		Prompt: "write the outline",
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if resp.Text != "generated outline" {
		t.Errorf("Expected trimmed text, got %q", resp.Text)
	}
	if resp.TokensUsed != 150 {
		t.Errorf("Expected 150 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_SystemPromptPassedThrough(t *testing.T) {
	var gotSystem string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotSystem = req.System

		resp := anthropicResponse{Model: req.Model}
		resp.Content = []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{{Type: "text", Text: "ok"}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	_, err := provider.Synthesize(context.Background(), SynthesisRequest{System: "be a journalist", Prompt: "p"})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if gotSystem != "be a journalist" {
		t.Errorf("Expected system prompt forwarded, got %q", gotSystem)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	_, err := provider.Synthesize(context.Background(), SynthesisRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "rate_limit_error") {
		t.Errorf("Expected the API error type surfaced, got %v", err)
	}
}

func TestAnthropicProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("Expected an error without an API key")
	}
}

func TestNewSynthesizer_UnknownProvider(t *testing.T) {
	_, err := NewSynthesizer(Config{Provider: "mystery"})
	if err == nil {
		t.Fatal("Expected an error for an unknown provider")
	}
	if !strings.Contains(err.Error(), "mystery") {
		t.Errorf("Expected the provider named in the error, got %v", err)
	}
}
