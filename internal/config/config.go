// Package config loads orgmap settings from config.yaml and ORGMAP_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run history and cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JinaConfig holds Jina Reader and Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (last fetch fallback).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds settings for the instruction-following page reducer.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DiscoveryConfig tunes the account-mapping pipeline.
type DiscoveryConfig struct {
	// Searcher picks the search backend: "jina", "perplexity" or "auto".
	Searcher          string `yaml:"searcher" mapstructure:"searcher"`
	Workers           int    `yaml:"workers" mapstructure:"workers"`
	RequestIntervalMs int    `yaml:"request_interval_ms" mapstructure:"request_interval_ms"`
	CallTimeoutSecs   int    `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	PhaseTimeoutSecs  int    `yaml:"phase_timeout_secs" mapstructure:"phase_timeout_secs"`
	Verify            bool   `yaml:"verify" mapstructure:"verify"`
	MaxPages          int    `yaml:"max_pages" mapstructure:"max_pages"`
	CacheTTLHours     int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	HostRatePerSec    int    `yaml:"host_rate_per_sec" mapstructure:"host_rate_per_sec"`
}

// RequestInterval is the minimum spacing between outbound calls.
func (d DiscoveryConfig) RequestInterval() time.Duration {
	return time.Duration(d.RequestIntervalMs) * time.Millisecond
}

// CallTimeout bounds a single search or fetch call.
func (d DiscoveryConfig) CallTimeout() time.Duration {
	return time.Duration(d.CallTimeoutSecs) * time.Second
}

// PhaseTimeout bounds one pipeline phase.
func (d DiscoveryConfig) PhaseTimeout() time.Duration {
	return time.Duration(d.PhaseTimeoutSecs) * time.Second
}

// CacheTTL is how long search and fetch responses stay cached.
func (d DiscoveryConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLHours) * time.Hour
}

// RetryConfig controls retries of transient adapter failures.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig controls the per-service circuit breakers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORGMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "orgmap.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("discovery.searcher", "auto")
	v.SetDefault("discovery.workers", 4)
	v.SetDefault("discovery.request_interval_ms", 1500)
	v.SetDefault("discovery.call_timeout_secs", 20)
	v.SetDefault("discovery.phase_timeout_secs", 180)
	v.SetDefault("discovery.verify", true)
	v.SetDefault("discovery.max_pages", 8)
	v.SetDefault("discovery.cache_ttl_hours", 24)
	v.SetDefault("discovery.host_rate_per_sec", 2)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
}

// Validate checks the settings a command mode depends on. Modes: "map",
// "serve", "runs" and "offline" (plan/extract, no network or store).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "map":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateSources()...)
		errs = append(errs, c.validateDiscovery()...)
	case "serve":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateSources()...)
		errs = append(errs, c.validateDiscovery()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "runs":
		errs = append(errs, c.validateStore()...)
	case "offline":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

func (c *Config) validateSources() []string {
	var errs []string
	switch c.Discovery.Searcher {
	case "jina":
		if c.Jina.Key == "" {
			errs = append(errs, "jina.key is required")
		}
	case "perplexity":
		if c.Perplexity.Key == "" {
			errs = append(errs, "perplexity.key is required")
		}
	case "auto":
		if c.Jina.Key == "" && c.Perplexity.Key == "" {
			errs = append(errs, "jina.key or perplexity.key is required")
		}
	default:
		errs = append(errs, "discovery.searcher must be jina, perplexity or auto")
	}
	return errs
}

func (c *Config) validateDiscovery() []string {
	var errs []string
	d := c.Discovery
	if d.Workers < 1 || d.Workers > 32 {
		errs = append(errs, "discovery.workers must be between 1 and 32")
	}
	if d.RequestIntervalMs < 0 {
		errs = append(errs, "discovery.request_interval_ms must be >= 0")
	}
	if d.CallTimeoutSecs <= 0 {
		errs = append(errs, "discovery.call_timeout_secs must be > 0")
	}
	if d.PhaseTimeoutSecs <= 0 {
		errs = append(errs, "discovery.phase_timeout_secs must be > 0")
	}
	if d.MaxPages < 0 {
		errs = append(errs, "discovery.max_pages must be >= 0")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
