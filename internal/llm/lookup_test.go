package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hospitaldelmovil/cotizador/internal/cache"
	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *LookupResponse
	err       error
	calls     int
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Lookup(ctx context.Context, req LookupRequest) (*LookupResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

type recordingLimiter struct {
	urls []string
}

func (r *recordingLimiter) Wait(ctx context.Context, rawURL string) error {
	r.urls = append(r.urls, rawURL)
	return nil
}

func providerAnswer() *LookupResponse {
	payload, _ := ParseLookupJSON(samplePayload)
	return &LookupResponse{Payload: payload, Model: "test-model"}
}

func TestPriceLookup_Success(t *testing.T) {
	provider := &MockProvider{name: "test-provider", response: providerAnswer()}
	limiter := &recordingLimiter{}
	lookup := NewPriceLookup(provider, WithLimiter(limiter))

	resp, err := lookup.Lookup(context.Background(), model.DefaultQuery())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if resp.Fallback || resp.Cached {
		t.Errorf("Expected live response, got %+v", resp)
	}
	if resp.Provider != "test-provider" || resp.Model != "test-model" {
		t.Errorf("Unexpected provenance: %s %s", resp.Provider, resp.Model)
	}
	if len(limiter.urls) != 1 || limiter.urls[0] != "llm://test-provider" {
		t.Errorf("Expected one rate-limited call, got %v", limiter.urls)
	}
}

func TestPriceLookup_CachesLiveAnswers(t *testing.T) {
	provider := &MockProvider{name: "test-provider", response: providerAnswer()}
	store := cache.NewLookupStore(cache.NewMemoryCache(time.Minute, time.Minute), 0)
	lookup := NewPriceLookup(provider, WithCache(store))

	q := model.DefaultQuery()
	if _, err := lookup.Lookup(context.Background(), q); err != nil {
		t.Fatalf("first lookup: %v", err)
	}

	resp, err := lookup.Lookup(context.Background(), q)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if !resp.Cached {
		t.Error("Expected second lookup to be served from cache")
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls)
	}
}

func TestPriceLookup_FallbackOnProviderError(t *testing.T) {
	provider := &MockProvider{name: "test-provider", err: errors.New("API error (500)")}
	store := cache.NewLookupStore(cache.NewMemoryCache(time.Minute, time.Minute), 0)
	lookup := NewPriceLookup(provider, WithCache(store), WithFallback(true))

	resp, err := lookup.Lookup(context.Background(), model.DefaultQuery())
	if err != nil {
		t.Fatalf("Expected fallback, got error %v", err)
	}

	if !resp.Fallback || resp.Provider != MockProviderName {
		t.Errorf("Expected mock fallback, got %+v", resp)
	}
	if len(resp.PartResults) != 6 {
		t.Errorf("Expected mock results, got %d", len(resp.PartResults))
	}
	if len(resp.Warnings) != 1 || !strings.Contains(resp.Warnings[0], "API error (500)") {
		t.Errorf("Expected warning with cause, got %v", resp.Warnings)
	}

	// fallback answers are not cached, so the provider is retried next time
	_, _ = lookup.Lookup(context.Background(), model.DefaultQuery())
	if provider.calls != 2 {
		t.Errorf("Expected provider to be retried, got %d calls", provider.calls)
	}
}

func TestPriceLookup_FallbackOnMalformedAnswer(t *testing.T) {
	provider := &MockProvider{name: "test-provider", response: &LookupResponse{}}
	lookup := NewPriceLookup(provider)

	resp, err := lookup.Lookup(context.Background(), model.DefaultQuery())
	if err != nil || !resp.Fallback {
		t.Errorf("Expected fallback for empty payload, got %+v %v", resp, err)
	}
}

func TestPriceLookup_NoFallback(t *testing.T) {
	provider := &MockProvider{name: "test-provider", err: errors.New("boom")}
	lookup := NewPriceLookup(provider, WithFallback(false))

	_, err := lookup.Lookup(context.Background(), model.DefaultQuery())
	if !errors.Is(err, ErrLookupFailed) {
		t.Errorf("Expected ErrLookupFailed, got %v", err)
	}
}

func TestPriceLookup_DisabledProvider(t *testing.T) {
	lookup := NewPriceLookup(nil)

	if lookup.IsEnabled() || lookup.ProviderName() != MockProviderName {
		t.Errorf("Expected disabled lookup, got %s", lookup.ProviderName())
	}

	resp, err := lookup.Lookup(context.Background(), model.DefaultQuery())
	if err != nil || !resp.Fallback {
		t.Errorf("Expected mock fallback without provider, got %+v %v", resp, err)
	}

	_, err = NewPriceLookup(nil, WithFallback(false)).Lookup(context.Background(), model.DefaultQuery())
	if !errors.Is(err, ErrLookupFailed) {
		t.Errorf("Expected ErrLookupFailed without provider and fallback, got %v", err)
	}
}

func TestPriceLookup_CanceledContext(t *testing.T) {
	provider := &MockProvider{name: "test-provider", err: context.Canceled}
	lookup := NewPriceLookup(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lookup.Lookup(ctx, model.DefaultQuery()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation to surface, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("Expected nil provider when disabled, got %v %v", p, err)
	}

	if _, err := NewProvider(Config{Provider: "gemini"}); err == nil {
		t.Error("Expected error for unknown provider")
	}

	p, err = NewProvider(Config{Provider: "Ollama", Model: "mistral"})
	if err != nil || p.Name() != "ollama" {
		t.Errorf("Expected ollama provider, got %v %v", p, err)
	}
}

func TestConfigFromModel_EnvKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	cfg := ConfigFromModel(model.LLMConfig{Provider: "openai"}, model.HTTPConfig{NoProxy: "localhost"})
	if cfg.APIKey != "sk-env" || cfg.NoProxy != "localhost" {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	cfg = ConfigFromModel(model.LLMConfig{Provider: "openai", APIKey: "sk-file"}, model.HTTPConfig{})
	if cfg.APIKey != "sk-file" {
		t.Errorf("Expected explicit key to win, got %s", cfg.APIKey)
	}

	cfg = ConfigFromModel(model.LLMConfig{Provider: "ollama"}, model.HTTPConfig{})
	if cfg.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected base URL from env, got %s", cfg.BaseURL)
	}
}
