package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowbase/internal/config"
)

func TestLLMConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.LLMConfig{
		Provider:     "openai",
		APIKey:       "sk-legacy",
		BaseURL:      "http://llm.internal/v1",
		DefaultModel: "gpt-4o-mini",
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "http://llm.internal/v1", primary.BaseURL)
	assert.Equal(t, "gpt-4o-mini", primary.DefaultModel)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestLLMConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.LLMProviderConfig{
			Provider:     "claude",
			APIKey:       "sk-primary",
			DefaultModel: "claude-sonnet-4-20250514",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
}

func TestLLMConfig_SecondaryConfig(t *testing.T) {
	assert.Nil(t, (&config.LLMConfig{Provider: "openai"}).SecondaryConfig())

	cfg := config.LLMConfig{Secondary: config.LLMProviderConfig{Provider: "mock"}}
	secondary := cfg.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "mock", secondary.Provider)
}

func TestParserConfig_MaxBytes(t *testing.T) {
	cfg := config.ParserConfig{MaxFileSizeMB: 3}
	assert.Equal(t, int64(3*1024*1024), cfg.MaxBytes())
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "kb", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/kb?sslmode=require", cfg.DSN())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KNOWBASE_SERVER_PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.AllowSignup)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "pad", cfg.Parser.RowPolicy)
	assert.True(t, cfg.Parser.AllCapsHeadings)
	assert.False(t, cfg.Parser.AllowDegraded)
	assert.Equal(t, 3, cfg.Queue.Concurrency)
	assert.Equal(t, 300, cfg.Queue.JobTimeoutSecs)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KNOWBASE_SERVER_PORT", "")
	t.Setenv("PORT", "9999")
	t.Setenv("KNOWBASE_LLM_PRIMARY_PROVIDER", "openai")
	t.Setenv("KNOWBASE_LLM_PRIMARY_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("KNOWBASE_PARSER_ROW_POLICY", " Keep ")
	t.Setenv("KNOWBASE_QUEUE_JOB_TIMEOUT_SECS", "45")
	t.Setenv("KNOWBASE_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.PrimaryConfig().Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.PrimaryConfig().BaseURL)
	assert.Equal(t, "keep", cfg.Parser.RowPolicy)
	assert.Equal(t, 45, cfg.Queue.JobTimeoutSecs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_ExplicitPortWinsOverPORT(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("KNOWBASE_SERVER_PORT", ":7000")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_RejectsUnknownRowPolicy(t *testing.T) {
	t.Setenv("KNOWBASE_PARSER_ROW_POLICY", "truncate")

	cfg, err := config.Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "parser.row_policy")
}
