package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

func anthropicText(text string) anthropicResponse {
	resp := anthropicResponse{ID: "msg_123", Model: "claude-3-5-haiku-20241022"}
	resp.Content = append(resp.Content, struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "text", Text: text})
	resp.Usage.InputTokens = 300
	resp.Usage.OutputTokens = 200
	return resp
}

func TestAnthropicProvider_Lookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Invalid request body: %v", err)
		}
		if req.System != systemPrompt {
			t.Errorf("Expected JSON-only system prompt, got %q", req.System)
		}

		// Claude tends to wrap JSON in a fence
		_ = json.NewEncoder(w).Encode(anthropicText("```json\n" + samplePayload + "\n```"))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Lookup(context.Background(), LookupRequest{Query: model.DefaultQuery()})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if len(resp.Payload.PartResults) != 2 || resp.Payload.PartResults[0].ID != "ml1" {
		t.Errorf("Unexpected results: %+v", resp.Payload.PartResults)
	}
	if resp.TokensUsed != 500 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Lookup_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "Rate limit exceeded"}}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Lookup(context.Background(), LookupRequest{Query: model.DefaultQuery()})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if got := err.Error(); got != "Anthropic API error: API error (429): rate_limit_error - Rate limit exceeded" {
		t.Errorf("Unexpected error: %s", got)
	}
}

func TestAnthropicProvider_Lookup_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Lookup(context.Background(), LookupRequest{Query: model.DefaultQuery()}); err == nil {
		t.Fatal("Expected error for malformed JSON")
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(anthropicText("Hola"))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}
}
