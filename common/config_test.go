package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := configFromEnv(env(map[string]string{"DATABASE_URL": "procurely.db"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Administrator", cfg.AdminName)
	assert.Equal(t, "587", cfg.SMTP.Port)
	assert.False(t, cfg.SecureCookies)
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	for name, values := range map[string]map[string]string{
		"missing database": {},
		"session ttl":      {"DATABASE_URL": "x.db", "SESSION_TTL": "soon"},
		"negative ttl":     {"DATABASE_URL": "x.db", "SESSION_TTL": "-1h"},
		"cache size":       {"DATABASE_URL": "x.db", "CACHE_SIZE": "0"},
		"cache ttl":        {"DATABASE_URL": "x.db", "CACHE_TTL": "forever"},
		"secure cookies":   {"DATABASE_URL": "x.db", "SECURE_COOKIES": "perhaps"},
		"admin half set":   {"DATABASE_URL": "x.db", "ADMIN_EMAIL": "owner@example.com"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := configFromEnv(env(values))
			assert.Error(t, err)
		})
	}
}

func TestRequireSessionSecret(t *testing.T) {
	assert.Error(t, (&Config{}).RequireSessionSecret())
	assert.Error(t, (&Config{SessionSecret: "short"}).RequireSessionSecret())
	assert.NoError(t, (&Config{SessionSecret: "0123456789abcdef"}).RequireSessionSecret())
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=on", sqliteDSN("app.db"))
	assert.Equal(t, "app.db?cache=shared&_foreign_keys=on", sqliteDSN("app.db?cache=shared"))
	assert.Equal(t, "app.db?_fk=1", sqliteDSN("app.db?_fk=1"))
	assert.True(t, isPostgres("postgres://u:p@localhost/procurely"))
	assert.True(t, isPostgres("postgresql://localhost/procurely"))
	assert.False(t, isPostgres("procurely.db"))
}
