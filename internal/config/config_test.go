package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "ENV", "API_BASE_URL", "PUBLIC_BASE_URL",
		"REQUEST_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.com/prod/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://api.example.com/prod", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://share.example.com/")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://share.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.Equal(t, 2, cfg.RateLimitBurst)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_RPS", "-1")
	t.Setenv("RATE_LIMIT_BURST", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
}

func TestLoad_MissingAPIBase(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingAPIBase)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL=https://dotenv.example.com\n"), 0o600))

	LoadDotEnv(path)
	t.Cleanup(func() { os.Unsetenv("API_BASE_URL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", cfg.APIBaseURL)
}
