package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "SERVER_PORT", "SERVER_HOST", "CORS_ORIGINS",
	"TTS_PROVIDER", "TTS_API_URL", "TTS_API_KEY", "SPEECHIFY_API_KEY", "OPENAI_API_KEY",
	"TTS_MODEL", "TTS_LANGUAGE", "TTS_TIMEOUT",
	"CACHE_TTL", "CACHE_MAX_ENTRIES",
	"RATE_LIMIT_WINDOW", "RATE_LIMIT_MAX", "RATE_LIMIT_CACHE_HITS",
	"LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "speechify-stream", cfg.TTS.Provider)
	assert.Equal(t, 30*time.Second, cfg.TTS.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 1, cfg.RateLimit.Max)
	assert.False(t, cfg.RateLimit.LimitCacheHits)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("TTS_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TTS_TIMEOUT", "5s")
	t.Setenv("CACHE_MAX_ENTRIES", "0")
	t.Setenv("RATE_LIMIT_CACHE_HITS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.TTS.Provider)
	assert.Equal(t, "sk-test", cfg.TTS.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TTS.Timeout)
	assert.Equal(t, 0, cfg.Cache.MaxEntries)
	assert.True(t, cfg.RateLimit.LimitCacheHits)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_APIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEECHIFY_API_KEY", "speechify")
	t.Setenv("TTS_API_KEY", "generic")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "generic", cfg.TTS.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"PORT":                  "abc",
		"TTS_TIMEOUT":           "soon",
		"CACHE_TTL":             "2",
		"RATE_LIMIT_MAX":        "one",
		"RATE_LIMIT_CACHE_HITS": "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.Validate(), "TTS_API_KEY")

	cfg.TTS.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.TTS.Timeout = 0
	assert.Error(t, cfg.Validate())
}
