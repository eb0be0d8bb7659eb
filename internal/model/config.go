package model

import "time"

// Config holds all runtime configuration for Veritas
type Config struct {
	Debate      DebateConfig      `yaml:"debate"`
	HTTP        HTTPConfig        `yaml:"http"`
	Search      SearchConfig      `yaml:"search"`
	Cache       CacheConfig       `yaml:"cache"`
	LLM         LLMConfig         `yaml:"llm"`
	Reliability ReliabilityConfig `yaml:"reliability"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// DebateConfig controls the round controller.
type DebateConfig struct {
	MaxRounds        int           `yaml:"max_rounds"`         // Rebuttal round limit
	MaxSearches      int           `yaml:"max_searches"`       // Per-role search budget (<=0 = unlimited)
	Language         string        `yaml:"language"`           // Output language for generated text
	CallTimeout      time.Duration `yaml:"call_timeout"`       // Per external call
	SessionTimeout   time.Duration `yaml:"session_timeout"`    // Whole verification run
	EarlyStop        bool          `yaml:"early_stop"`         // Convergence-based early termination
	SourcesPerTurn   int           `yaml:"sources_per_turn"`   // How many search hits a role may cite per turn
	ResultsPerSearch int           `yaml:"results_per_search"` // Search results requested per query
}

// HTTPConfig controls outbound content fetching.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RatePerSec    float64       `yaml:"rate_per_sec"` // Per-domain request rate
	RateBurst     int           `yaml:"rate_burst"`
	RespectRobots bool          `yaml:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
}

// SearchConfig selects and configures the web search backends.
type SearchConfig struct {
	Provider      string `yaml:"provider"` // brave, newsapi, duckduckgo
	BraveAPIKey   string `yaml:"brave_api_key,omitempty"`
	NewsAPIAPIKey string `yaml:"newsapi_api_key,omitempty"`
}

// CacheConfig controls the shared tool cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	DiskDir    string        `yaml:"disk_dir,omitempty"` // Optional persistent backing layer
}

// LLMConfig configures the language-model backend.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // Never serialized
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ReliabilityConfig drives source reliability classification.
type ReliabilityConfig struct {
	HighDomains   []string `yaml:"high_domains"`
	MediumDomains []string `yaml:"medium_domains"`
}

// ConcurrencyConfig controls batch processing parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		Debate: DebateConfig{
			MaxRounds:        3,
			MaxSearches:      -1,
			Language:         "English",
			CallTimeout:      10 * time.Second,
			SessionTimeout:   5 * time.Minute,
			EarlyStop:        false,
			SourcesPerTurn:   3,
			ResultsPerSearch: 10,
		},
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Veritas/0.1 (+https://github.com/veritaskit/veritas)",
			MaxBodyBytes:  2_000_000,
			RatePerSec:    2,
			RateBurst:     5,
			RespectRobots: true,
		},
		Search: SearchConfig{
			Provider: "brave",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Hour,
			MaxEntries: 1000,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "",
			Timeout:   10,
			MaxTokens: 1000,
		},
		Reliability: ReliabilityConfig{
			HighDomains: []string{
				"who.int", "europa.eu", "gov.uk", "nih.gov", "cdc.gov",
				"reuters.com", "apnews.com", "nature.com", "sciencedirect.com",
				"istat.it", "imf.org", "worldbank.org", "oecd.org",
			},
			MediumDomains: []string{
				"wikipedia.org", "britannica.com", "bbc.com", "bbc.co.uk",
				"theguardian.com", "nytimes.com", "economist.com",
				"corriere.it", "lemonde.fr", "spiegel.de",
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
			JSON:    false,
		},
	}
}
