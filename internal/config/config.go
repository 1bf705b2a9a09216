// Package config loads the HTTP server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/binder"
)

type Config struct {
	ListenAddr              string
	CORSAllowedOrigins      []string
	BuildVersion            string
	BindInterval            time.Duration
	BindMaxAttempts         int
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
	Verbose                 bool

	// InspectEnabled serves the process-wide last published record at
	// /v1/inspect. It mixes sessions, so it is off unless CLIENTCTX_INSPECT=1.
	InspectEnabled bool
}

func Load() Config {
	port := envOrDefault("CLIENTCTX_PORT", "8080")
	bind := binder.DefaultConfig()

	return Config{
		ListenAddr:              ":" + port,
		CORSAllowedOrigins:      parseCSV(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		BuildVersion:            strings.TrimSpace(os.Getenv("CLIENTCTX_BUILD_VERSION")),
		BindInterval:            time.Duration(envOrDefaultInt("CLIENTCTX_BIND_INTERVAL_MS", int(bind.Interval/time.Millisecond))) * time.Millisecond,
		BindMaxAttempts:         envOrDefaultInt("CLIENTCTX_BIND_MAX_ATTEMPTS", bind.MaxAttempts),
		RateLimitRequestsPerSec: envOrDefaultFloat("RATE_LIMIT_REQUESTS_PER_SEC", 25),
		RateLimitBurst:          envOrDefaultInt("RATE_LIMIT_BURST", 50),
		Verbose:                 envOrDefault("CLIENTCTX_VERBOSE", "") == "1",
		InspectEnabled:          envOrDefault("CLIENTCTX_INSPECT", "") == "1",
	}
}

// Binder returns the binder settings.
func (c Config) Binder() binder.Config {
	return binder.Config{Interval: c.BindInterval, MaxAttempts: c.BindMaxAttempts}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	values := strings.Split(value, ",")
	result := make([]string, 0, len(values))
	for _, item := range values {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}

	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}

func envOrDefaultInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	var parsed float64
	if _, err := fmt.Sscanf(value, "%f", &parsed); err != nil {
		return fallback
	}
	return parsed
}
