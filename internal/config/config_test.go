package config

import (
	"testing"

	"jobmetrics/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "MAX_UPLOAD_MB", "EXCEL_FILE", "ARTIFACTS_DIR",
		"DATABASE_URL", "DATABASE_DRIVER", "CACHE_ENABLED", "CACHE_SIZE", "BATCH_PARALLELISM", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, int64(20<<20), cfg.Server.MaxUploadSize)
	assert.Equal(t, "artifacts", cfg.Paths.ArtifactsDir)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.True(t, cfg.Pipeline.CacheEnabled)
	assert.Equal(t, 4, cfg.Pipeline.BatchParallelism)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("DATABASE_URL", "postgres://user@localhost/jobs?sslmode=disable")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("BATCH_PARALLELISM", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, int64(5<<20), cfg.Server.MaxUploadSize)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Pipeline.CacheEnabled)
	assert.Equal(t, 8, cfg.Pipeline.BatchParallelism)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown driver", "DATABASE_DRIVER", "mysql"},
		{"zero parallelism", "BATCH_PARALLELISM", "0"},
		{"zero upload size", "MAX_UPLOAD_MB", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_DRIVER", "")
			t.Setenv("BATCH_PARALLELISM", "")
			t.Setenv("MAX_UPLOAD_MB", "")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
