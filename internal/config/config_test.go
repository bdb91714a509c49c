package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/launchaudit")
	t.Setenv("APP_ENV", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("AUDIT_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 0, cfg.AuditWorkers)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/launchaudit")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("PSI_API_KEY", "psi")
	t.Setenv("CRUX_API_KEY", "crux")
	t.Setenv("AUDIT_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "psi", cfg.PSIAPIKey)
	assert.Equal(t, "crux", cfg.CruxAPIKey)
	assert.Equal(t, 4, cfg.AuditWorkers)
}

func TestLoadMissingDatabaseURLIsNonFatal(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg, err := Load()
	assert.Error(t, err)
	// The partially loaded config is still usable for early local runs.
	assert.Equal(t, ":7070", cfg.ListenAddr)
}

func TestLoadIgnoresBadWorkerCount(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/launchaudit")
	t.Setenv("AUDIT_WORKERS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.AuditWorkers)
}
