package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, BackendFixture, cfg.ContentBackend)
	assert.Equal(t, 4, cfg.OptionCount)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "globe_session", cfg.CookieName)
	assert.Empty(t, cfg.RedisAddr)
	assert.Zero(t, cfg.RandomSeed)
	assert.True(t, cfg.DevSecret())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CONTENT_BACKEND", " SQLite ")
	t.Setenv("OPTION_COUNT", "6")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.ContentBackend)
	assert.Equal(t, 6, cfg.OptionCount)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.False(t, cfg.DevSecret())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"CONTENT_BACKEND": "mongo"}},
		{"postgres without dsn", map[string]string{"CONTENT_BACKEND": "postgres"}},
		{"one option", map[string]string{"OPTION_COUNT": "1"}},
		{"bad duration", map[string]string{"SESSION_TTL": "soon"}},
		{"threshold above one", map[string]string{"BREAKER_FAILURE_THRESHOLD": "1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
