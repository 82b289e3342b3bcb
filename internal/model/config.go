package model

import "time"

// Config is the complete cotizador configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Supplier     SupplierConfig     `yaml:"supplier" mapstructure:"supplier"`
	Quote        QuoteConfig        `yaml:"quote" mapstructure:"quote"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	History      HistoryConfig      `yaml:"history" mapstructure:"history"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound HTTP clients
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig controls the remote AI pricing lookup
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (mock only)
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"-" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	FallbackToMock bool   `yaml:"fallback_to_mock" mapstructure:"fallback_to_mock"`
}

// CacheConfig controls lookup response caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// SupplierConfig points at the local supplier sheet and the catalog sheets
type SupplierConfig struct {
	SheetURL       string `yaml:"sheet_url" mapstructure:"sheet_url"`
	SheetPath      string `yaml:"sheet_path,omitempty" mapstructure:"sheet_path"` // local .csv or .xlsx
	XLSXSheet      string `yaml:"xlsx_sheet,omitempty" mapstructure:"xlsx_sheet"`
	DeviceSheetURL string `yaml:"device_sheet_url" mapstructure:"device_sheet_url"`
	PartsSheetURL  string `yaml:"parts_sheet_url" mapstructure:"parts_sheet_url"`
	AllowAnyHost   bool   `yaml:"allow_any_host" mapstructure:"allow_any_host"`
}

// QuoteConfig controls quote derivation and the exported sheet
type QuoteConfig struct {
	Markup       float64       `yaml:"markup" mapstructure:"markup"`
	RoundingStep float64       `yaml:"rounding_step" mapstructure:"rounding_step"`
	Notes        string        `yaml:"notes" mapstructure:"notes"`
	Settings     QuoteSettings `yaml:"settings" mapstructure:"settings"`
}

// RateLimitingConfig controls per-host request rates
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Mode string `yaml:"mode" mapstructure:"mode"` // gin mode: debug, release, test
}

// HistoryConfig points at the historical offers file; empty uses the seed
type HistoryConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Cotizador/0.1 (+https://github.com/hospitaldelmovil/cotizador)",
			MaxBodyBytes: 5_000_000,
		},
		LLM: LLMConfig{
			Provider:       "",
			Model:          "", // provider default
			Timeout:        60,
			MaxTokens:      2000,
			FallbackToMock: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".cotizador-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Quote: QuoteConfig{
			Markup:       1.35,
			RoundingStep: 10,
			Notes:        DefaultQuoteNotes,
			Settings:     DefaultQuoteSettings(),
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Output: OutputConfig{
			Dir: "./cotizaciones",
		},
	}
}
