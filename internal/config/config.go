package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	TTS       TTSConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type TTSConfig struct {
	Provider string // "speechify-stream", "speechify" or "openai"
	APIURL   string // empty: provider default
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int // 0 = unbounded
}

type RateLimitConfig struct {
	Window         time.Duration
	Max            int
	LimitCacheHits bool
}

type LogConfig struct {
	Level string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("PORT", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port == 0 {
		port, err = getEnvInt("SERVER_PORT", 3000)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
	}

	timeout, err := getEnvDuration("TTS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_TIMEOUT: %w", err)
	}

	cacheTTL, err := getEnvDuration("CACHE_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	maxEntries, err := getEnvInt("CACHE_MAX_ENTRIES", 10000)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAX_ENTRIES: %w", err)
	}

	window, err := getEnvDuration("RATE_LIMIT_WINDOW", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	maxRequests, err := getEnvInt("RATE_LIMIT_MAX", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX: %w", err)
	}

	limitHits, err := getEnvBool("RATE_LIMIT_CACHE_HITS", false)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CACHE_HITS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		TTS: TTSConfig{
			Provider: getEnv("TTS_PROVIDER", "speechify-stream"),
			APIURL:   getEnv("TTS_API_URL", ""),
			APIKey:   firstEnv("TTS_API_KEY", "SPEECHIFY_API_KEY", "OPENAI_API_KEY"),
			Model:    getEnv("TTS_MODEL", ""),
			Language: getEnv("TTS_LANGUAGE", ""),
			Timeout:  timeout,
		},
		Cache: CacheConfig{
			TTL:        cacheTTL,
			MaxEntries: maxEntries,
		},
		RateLimit: RateLimitConfig{
			Window:         window,
			Max:            maxRequests,
			LimitCacheHits: limitHits,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.TTS.APIKey == "" {
		missing = append(missing, "TTS_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.TTS.Timeout <= 0 {
		return fmt.Errorf("TTS_TIMEOUT must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
