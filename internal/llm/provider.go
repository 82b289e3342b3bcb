package llm

import (
	"context"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Provider defines the interface for AI pricing providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Lookup asks the model for listings and device price bands for a query
	Lookup(ctx context.Context, req LookupRequest) (*LookupResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// LookupRequest contains the input for a pricing lookup
type LookupRequest struct {
	Query model.SearchQuery

	// Prompt overrides BuildPrompt(Query) when set
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// LookupResponse is a validated provider answer
type LookupResponse struct {
	Payload    *model.LookupResponse
	Raw        string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // mock payload only
		Timeout:   60,
		MaxTokens: 2000,
	}
}

const (
	defaultMaxTokens  = 2000
	lookupTemperature = 0.2
)

// params resolves prompt, model and token budget from the request, then the
// provider config, then defaultModel
func (c Config) params(req LookupRequest, defaultModel string) (prompt, modelName string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Query)
	}

	modelName = req.Model
	if modelName == "" {
		modelName = c.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return prompt, modelName, maxTokens
}
