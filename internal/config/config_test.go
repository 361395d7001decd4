package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 7, cfg.AlertDays)
	assert.Equal(t, 10.0, cfg.AlertHours)
	assert.Equal(t, 30*time.Second, cfg.CounterTTL)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PG_HOST=db.internal\nPG_USER=hangar\nPG_DB=hangar\nDEFAULT_ALERT_DAYS=14\n"), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"PG_HOST", "PG_USER", "PG_DB", "DEFAULT_ALERT_DAYS"} {
			os.Unsetenv(k)
		}
	})
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.AlertDays)
	assert.Equal(t, "postgres://hangar:@db.internal:5432/hangar?sslmode=disable", cfg.Postgres.DSN())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
