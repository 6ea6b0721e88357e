package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, core.DefaultModelName, cfg.AI.Model)
	assert.Equal(t, string(core.ResponseMarkdown), cfg.AI.ResponseFormat)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, 5, cfg.MaxWorkers)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CR_AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CR_CACHE_TTL", "1h")
	t.Setenv("CR_DATABASE_HOST", "db.internal")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.APIKey())
	assert.Equal(t, "OPENAI_API_KEY", cfg.AI.APIKeyEnv())
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	body := `
ai:
  provider: ollama
  model: llama3
server:
  port: "9090"
max_workers: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.AI.Provider)
	assert.Equal(t, "llama3", cfg.AI.Model)
	assert.False(t, cfg.AI.RequiresAPIKey())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2, cfg.MaxWorkers)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			AI:         AIConfig{Provider: "gemini", ResponseFormat: "markdown"},
			Cache:      CacheConfig{TTL: time.Hour},
			MaxWorkers: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.Provider = "bard" }, wantErr: true},
		{name: "unknown response format", mutate: func(c *Config) { c.AI.ResponseFormat = "xml" }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.MaxWorkers = 0 }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.Server.RateLimitPerMinute = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAIConfig_ResolveModel(t *testing.T) {
	ai := AIConfig{Model: "gpt-4o"}

	assert.Equal(t, "gpt-4o", ai.ResolveModel(core.DefaultReviewConfig()))

	repo := core.NewReviewConfig("gemini-2.5-pro", 0.1, nil, nil, nil)
	assert.Equal(t, "gemini-2.5-pro", ai.ResolveModel(repo))

	assert.Equal(t, core.DefaultModelName, AIConfig{}.ResolveModel(core.ReviewConfig{}))
}
