package model

import "time"

// Config is the full runtime configuration, loadable from YAML via viper.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Providers   ProvidersConfig   `yaml:"providers" mapstructure:"providers"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer" mapstructure:"analyzer"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// HTTPConfig controls the shared provider HTTP client.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	// KnowledgeGraphAPIKey enables the Google Knowledge Graph adapter.
	// Without a key that adapter contributes no data.
	KnowledgeGraphAPIKey string `yaml:"knowledge_graph_api_key" mapstructure:"knowledge_graph_api_key"`

	// MinRequestInterval is the per-provider throttle used in sequential mode.
	MinRequestInterval time.Duration `yaml:"min_request_interval" mapstructure:"min_request_interval"`

	// Sequential switches the aggregator from parallel fan-out to one
	// rate-limited call at a time.
	Sequential bool `yaml:"sequential" mapstructure:"sequential"`
}

// CacheConfig holds cache store settings.
type CacheConfig struct {
	Path             string        `yaml:"path" mapstructure:"path"`
	EntityMemoryTTL  time.Duration `yaml:"entity_memory_ttl" mapstructure:"entity_memory_ttl"`
	AnalysisTTLDays  int           `yaml:"analysis_ttl_days" mapstructure:"analysis_ttl_days"`
	EntityMaxAgeDays int           `yaml:"entity_max_age_days" mapstructure:"entity_max_age_days"`
}

// AnalyzerConfig configures the cultural-context text analyzer.
type AnalyzerConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MinTextLength int    `yaml:"min_text_length" mapstructure:"min_text_length"`
}

// ConcurrencyConfig bounds the worker pools.
type ConcurrencyConfig struct {
	ProviderWorkers int `yaml:"provider_workers" mapstructure:"provider_workers"`
	BatchWorkers    int `yaml:"batch_workers" mapstructure:"batch_workers"`
	MaxEnrich       int `yaml:"max_enrich" mapstructure:"max_enrich"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "Erudite/0.1 (+https://github.com/mkravets/erudite)",
		},
		Providers: ProvidersConfig{
			MinRequestInterval: 100 * time.Millisecond,
		},
		Cache: CacheConfig{
			Path:             "erudite.db",
			EntityMemoryTTL:  10 * time.Minute,
			AnalysisTTLDays:  30,
			EntityMaxAgeDays: 30,
		},
		Analyzer: AnalyzerConfig{
			Model:         "gpt-4o-mini",
			Timeout:       30,
			MaxTokens:     2000,
			MinTextLength: 10,
		},
		Concurrency: ConcurrencyConfig{
			ProviderWorkers: 4,
			BatchWorkers:    4,
			MaxEnrich:       10,
		},
	}
}
