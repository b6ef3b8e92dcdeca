package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Empty variables count as unset, so every default applies.
	for _, k := range []string{"PORT", "APP_ENV", "DATABASE_DRIVER", "DATABASE_URL", "REDIS_URL", "TIME_ZONE", "STORE_NAME", "CACHE_TTL_SECONDS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("TIME_ZONE", "America/New_York")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "America/New_York", cfg.Location().String())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "Stockwise", cfg.StoreName)
	assert.Equal(t, 1000, cfg.RateLimitPerMinute)
}

func TestLoadRejectsBadTimeZone(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("TIME_ZONE", "Mars/Olympus")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIME_ZONE")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestLocationFallsBackToUTC(t *testing.T) {
	var c Config
	assert.Equal(t, time.UTC, c.Location())
}
