package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snnyvrz/locallibrary/internal/circulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	for _, key := range []string{"DB_SSLMODE", "DB_DRIVER", "HTTP_ADDR", "REDIS_ADDR", "REDIS_DB", "LIBRARY_POLICY_FILE", "TZ", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "require", cfg.DBSSLMode)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.TrustedProxies)
	assert.Contains(t, cfg.DSN(), "sslmode=require")
	assert.Contains(t, cfg.DSN(), "TimeZone=UTC")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GIN_MODE", "test")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/library.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/library.db", cfg.SQLitePath)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestConfig_Location(t *testing.T) {
	loc, err := (&Config{TZ: "Europe/Berlin"}).Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	_, err = (&Config{TZ: "Nowhere/Special"}).Location()
	assert.Error(t, err)
}

func TestConfig_Policy(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		policy, err := (&Config{}).Policy()

		require.NoError(t, err)
		assert.Equal(t, circulation.DefaultPolicy(), policy)
	})

	t.Run("file overrides some keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		require.NoError(t, os.WriteFile(path, []byte("[circulation]\nreservation_mode = \"hold\"\nloan_period_days = 14\n"), 0o600))

		policy, err := (&Config{PolicyFile: path}).Policy()

		require.NoError(t, err)
		assert.Equal(t, circulation.ModeHold, policy.ReservationMode)
		assert.Equal(t, 14, policy.LoanPeriodDays)
		assert.Equal(t, 28, policy.MaxAheadDays)
	})

	t.Run("invalid policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		require.NoError(t, os.WriteFile(path, []byte("[circulation]\nreservation_mode = \"queue\"\n"), 0o600))

		_, err := (&Config{PolicyFile: path}).Policy()

		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := (&Config{PolicyFile: filepath.Join(t.TempDir(), "nope.toml")}).Policy()

		assert.Error(t, err)
	})
}
