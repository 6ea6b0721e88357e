// Package config loads process configuration and per-repository review settings.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/code-reviewer/internal/cache"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/logger"
)

// Providers lists the supported LLM providers.
var Providers = []string{"gemini", "ollama", "openai", "anthropic"}

// Config holds the application's configuration values.
type Config struct {
	Server     ServerConfig  `mapstructure:"server"`
	AI         AIConfig      `mapstructure:"ai"`
	Cache      CacheConfig   `mapstructure:"cache"`
	Database   DBConfig      `mapstructure:"database"`
	GitHub     GitHubConfig  `mapstructure:"github"`
	Logging    logger.Config `mapstructure:"logging"`
	MaxWorkers int           `mapstructure:"max_workers"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	// RateLimitPerMinute applies per client to /api routes. Zero disables limiting.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int `mapstructure:"rate_limit_burst"`
}

type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	Model           string        `mapstructure:"model"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	OllamaHost      string        `mapstructure:"ollama_host"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ResponseFormat  string        `mapstructure:"response_format"`
	MaxTokens       int           `mapstructure:"max_tokens"`
}

// APIKey returns the credential for the configured provider. Ollama needs none.
func (c AIConfig) APIKey() string {
	switch c.Provider {
	case "gemini":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// ResolveModel picks the model for a run. A model set in .codereview.yaml wins
// over the process default.
func (c AIConfig) ResolveModel(repo core.ReviewConfig) string {
	if repo.ModelName != "" && repo.ModelName != core.DefaultModelName {
		return repo.ModelName
	}
	if c.Model != "" {
		return c.Model
	}
	return core.DefaultModelName
}

// RequiresAPIKey reports whether the provider needs a credential.
func (c AIConfig) RequiresAPIKey() bool {
	return c.Provider != "ollama"
}

// APIKeyEnv names the environment variable holding the provider's credential.
func (c AIConfig) APIKeyEnv() string {
	switch c.Provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// Enabled reports whether a database host is configured. Without one, reviews
// are kept in memory for the lifetime of the process.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	Token          string `mapstructure:"token"`
}

// WebhooksEnabled reports whether the GitHub App integration is configured.
func (c GitHubConfig) WebhooksEnabled() bool {
	return c.AppID != 0 && c.WebhookSecret != ""
}

// unprefixed maps config keys to conventional environment variables that are
// honoured without the CR_ prefix.
var unprefixed = map[string]string{
	"ai.gemini_api_key":     "GEMINI_API_KEY",
	"ai.openai_api_key":     "OPENAI_API_KEY",
	"ai.anthropic_api_key":  "ANTHROPIC_API_KEY",
	"github.token":          "GITHUB_TOKEN",
	"github.webhook_secret": "GITHUB_WEBHOOK_SECRET",
}

// LoadConfig reads configuration from an optional config.yaml, environment
// variables prefixed with CR_ (for example CR_AI_PROVIDER) and defaults.
func LoadConfig() (*Config, error) {
	return Load(viper.New())
}

// Load reads configuration through v, which may already carry bound flags.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.code-reviewer")

	v.SetEnvPrefix("CR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, env := range unprefixed {
		if err := v.BindEnv(key, "CR_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit_per_minute", 30)
	v.SetDefault("server.rate_limit_burst", 5)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", core.DefaultModelName)
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.timeout", 2*time.Minute)
	v.SetDefault("ai.response_format", string(core.ResponseMarkdown))
	v.SetDefault("ai.max_tokens", 4000)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", cache.DefaultDir())
	v.SetDefault("cache.ttl", cache.DefaultTTL)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.database", "code_reviewer")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("github.private_key_path", "keys/code-reviewer.private-key.pem")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("max_workers", 5)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.AI.Provider) {
		return fmt.Errorf("unsupported LLM provider %q (expected one of %s)", c.AI.Provider, strings.Join(Providers, ", "))
	}
	switch core.ResponseFormat(c.AI.ResponseFormat) {
	case core.ResponseMarkdown, core.ResponseJSON:
	default:
		return fmt.Errorf("unsupported response format %q (expected markdown or json)", c.AI.ResponseFormat)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}
