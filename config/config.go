/*
Package config loads runtime configuration from the environment.

An optional .env file is read first (development convenience); real
environments set the variables directly. Every knob has a default so the
server starts with zero configuration against a local upstream.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config aggregates runtime configuration for the engine server.
type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	CORSOrigins           []string
	RequestTimeoutSeconds int
}

// UpstreamConfig points at the external club API.
type UpstreamConfig struct {
	BaseURL        string
	TimeoutSeconds int
	// ShareRatio overrides the default staff compensation ratio when the
	// deployment negotiates a different split.
	ShareRatio decimal.Decimal
}

// CacheConfig controls the catalog snapshot cache.
type CacheConfig struct {
	Path       string
	TTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ratio := decimal.NewFromFloat(0.70)
	if raw := os.Getenv("COMPENSATION_SHARE_RATIO"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("invalid COMPENSATION_SHARE_RATIO %q", raw)
		}
		ratio = parsed
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "club-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8090"),
			CORSOrigins:           splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("UPSTREAM_BASE_URL", "http://localhost:8000/api"),
			TimeoutSeconds: getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 15),
			ShareRatio:     ratio,
		},
		Cache: CacheConfig{
			Path:       getEnv("CACHE_PATH", "club-cache.db"),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 60),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the upstream call timeout duration.
func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// TTL returns the snapshot freshness window.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
