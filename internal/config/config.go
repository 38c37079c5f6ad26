package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL        string
	DataDir           string
	Env               string
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	RequestBurst      int
}

func Load() Config {
	cfg := Config{
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:3000/api"),
		DataDir:           getEnv("RENTHUB_DATA_DIR", defaultDataDir()),
		Env:               getEnv("ENV", "development"),
		HTTPTimeout:       getDurationEnv("HTTP_TIMEOUT", 15*time.Second),
		RequestsPerSecond: getFloatEnv("REQUESTS_PER_SECOND", 10),
		RequestBurst:      getIntEnv("REQUEST_BURST", 20),
	}

	if cfg.Env == "production" && cfg.APIBaseURL == "http://localhost:3000/api" {
		slog.Warn("API_BASE_URL is not set — production builds should point at a real backend")
	}

	return cfg
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".renthub"
	}
	return filepath.Join(home, ".renthub")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

func getFloatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v)
		return fallback
	}
	return f
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}
