package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("CONTACT_COOLDOWN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001/api", cfg.BackendURL)
	assert.Equal(t, 20*time.Minute, cfg.ContactCooldown)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("BACKEND_URL", "https://api.sunrisestay.com")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_BURST", "42")
	t.Setenv("RATE_LIMIT_RPS", "1.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.sunrisestay.com", cfg.BackendURL)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 42, cfg.RateLimitBurst)
	assert.Equal(t, 1.5, cfg.RateLimitRPS)
}

func TestGetDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	assert.Equal(t, time.Hour, getDuration("SESSION_TTL", time.Hour))
}
