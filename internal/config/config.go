package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingAPIBase = errors.New("API_BASE_URL is not configured")

type Config struct {
	Port           string
	Env            string
	APIBaseURL     string
	PublicBaseURL  string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       string
}

// LoadDotEnv loads the given .env files (".env" when none are given) into the
// environment. Variables already set are left untouched.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	port := getEnv("PORT", "8080")

	cfg := Config{
		Port:           port,
		Env:            getEnv("ENV", "development"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", DefaultPublicBaseURL(port)), "/"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.APIBaseURL == "" {
		return cfg, ErrMissingAPIBase
	}

	return cfg, nil
}

// DefaultPublicBaseURL is the share-link base used when PUBLIC_BASE_URL is unset.
func DefaultPublicBaseURL(port string) string {
	return "http://localhost:" + port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		slog.Warn("invalid number, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}
