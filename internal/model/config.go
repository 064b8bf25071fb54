package model

import "time"

// Config is the complete factseek configuration tree.
// Hierarchy (highest to lowest priority): CLI flags, FACTSEEK_* environment
// variables, ~/.factseek/config.yaml, defaults below.
type Config struct {
	Providers   ProvidersConfig   `yaml:"providers" json:"providers"`
	Verify      VerifyConfig      `yaml:"verify" json:"verify"`
	Reliability ReliabilityConfig `yaml:"reliability" json:"reliability"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	History     HistoryConfig     `yaml:"history" json:"history"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// ProvidersConfig configures the search provider chain, priority order:
// serper, searxng, brave, scraper.
type ProvidersConfig struct {
	SerperAPIKey string `yaml:"serper_api_key,omitempty" json:"serper_api_key,omitempty"`
	SerperLimit  int    `yaml:"serper_limit" json:"serper_limit"` // Per calendar month

	SearxInstances []string `yaml:"searx_instances" json:"searx_instances"`
	SearxLimit     int      `yaml:"searx_limit" json:"searx_limit"` // Per calendar day

	BraveAPIKey string `yaml:"brave_api_key,omitempty" json:"brave_api_key,omitempty"`
	BraveLimit  int    `yaml:"brave_limit" json:"brave_limit"` // Per calendar day

	ScraperEnabled bool `yaml:"scraper_enabled" json:"scraper_enabled"`

	MaxResults int `yaml:"max_results" json:"max_results"` // Per search call

	// UsageFile persists quota counters across restarts. Empty disables.
	UsageFile string `yaml:"usage_file,omitempty" json:"usage_file,omitempty"`
}

// VerifyConfig tunes the per-claim verification state machine
type VerifyConfig struct {
	ClaimDeadline time.Duration `yaml:"claim_deadline" json:"claim_deadline"` // Per-claim budget
	Workers       int           `yaml:"workers" json:"workers"`               // Concurrent claims
	FastMaxClaims int           `yaml:"fast_max_claims" json:"fast_max_claims"`
	FastProviders int           `yaml:"fast_providers" json:"fast_providers"` // Providers kept in fast mode
}

// ReliabilityConfig holds the report grading thresholds
type ReliabilityConfig struct {
	// HighRatio: reliability is high iff verified/total >= HighRatio and no
	// claim resolved false.
	HighRatio float64 `yaml:"high_ratio" json:"high_ratio"`
	// LowRatio: reliability is low iff false/total >= LowRatio, or false
	// verdicts outnumber verified ones.
	LowRatio float64 `yaml:"low_ratio" json:"low_ratio"`
}

// LLMConfig configures the external extractor/judge collaborator
type LLMConfig struct {
	APIKey    string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty"` // OpenAI-compatible endpoint
	Model     string `yaml:"model" json:"model"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // Seconds per call
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// CacheConfig tunes the router-level query cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// HistoryConfig locates the report store
type HistoryConfig struct {
	Path string `yaml:"path" json:"path"` // Badger directory; empty means in-memory
}

// HTTPConfig holds shared HTTP client settings
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig controls CLI chatter
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns the documented defaults
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			SerperLimit: 2500,
			SearxInstances: []string{
				"https://searx.be",
				"https://searx.tiekoetter.com",
				"https://search.sapti.me",
			},
			SearxLimit:     100,
			BraveLimit:     66,
			ScraperEnabled: true,
			MaxResults:     10,
			UsageFile:      "", // Set by the CLI to ~/.factseek/usage.json
		},
		Verify: VerifyConfig{
			ClaimDeadline: 45 * time.Second,
			Workers:       4,
			FastMaxClaims: 3,
			// Keeps serper, searxng and brave; fast mode drops only the scraper
			FastProviders: 3,
		},
		Reliability: ReliabilityConfig{
			HighRatio: 0.8,
			LowRatio:  0.3,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 1500,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		History: HistoryConfig{
			Path: "", // Set by the CLI to ~/.factseek/history
		},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "factseek/0.1 (+https://github.com/factseek/factseek)",
		},
		Output: OutputConfig{},
	}
}
