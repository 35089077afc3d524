package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, config.DefaultEnv, cfg.Env)
	assert.Equal(t, config.DefaultEnvDir, cfg.EnvDir)
	assert.Equal(t, config.FormatText, cfg.Format)
	assert.True(t, cfg.Color)
	assert.False(t, cfg.Keep)
	assert.Empty(t, cfg.Journal)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		configMod func(*config.Config)
		want      error
	}{
		{"empty_env", func(c *config.Config) { c.Env = "" }, config.ErrEmptyEnv},
		{"bad_format", func(c *config.Config) { c.Format = "xml" }, config.ErrInvalidFormat},
		{"bad_log_format", func(c *config.Config) { c.LogFormat = "logfmt" }, config.ErrInvalidLogFormat},
		{"bad_log_level", func(c *config.Config) { c.LogLevel = "loud" }, config.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.configMod(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlays_values", func(t *testing.T) {
		path := writeFile(t, dir, "ok.yaml", "env: stage\njournal: runs.db\nkeep: true\n")
		cfg := config.NewDefaultConfig()
		require.NoError(t, cfg.LoadFile(path, false))

		assert.Equal(t, "stage", cfg.Env)
		assert.Equal(t, "runs.db", cfg.Journal)
		assert.True(t, cfg.Keep)
		assert.Equal(t, config.DefaultEnvDir, cfg.EnvDir)
	})

	t.Run("unknown_field", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "environment: stage\n")
		err := config.NewDefaultConfig().LoadFile(path, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "environment")
	})

	t.Run("missing_optional", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		assert.NoError(t, cfg.LoadFile(filepath.Join(dir, "none.yaml"), true))
		assert.Equal(t, config.DefaultEnv, cfg.Env)
	})

	t.Run("missing_required", func(t *testing.T) {
		assert.Error(t, config.NewDefaultConfig().LoadFile(filepath.Join(dir, "none.yaml"), false))
	})

	t.Run("empty_file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.yaml", "\n")
		assert.NoError(t, config.NewDefaultConfig().LoadFile(path, false))
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCENARIA_ENV", "prod")
	t.Setenv("SCENARIA_JOURNAL", "/tmp/j.db")
	t.Setenv("SCENARIA_KEEP", "true")
	t.Setenv("NO_COLOR", "1")

	cfg := config.NewDefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "/tmp/j.db", cfg.Journal)
	assert.True(t, cfg.Keep)
	assert.False(t, cfg.Color)
}

func TestLoadFromEnv_InvalidBool(t *testing.T) {
	t.Setenv("SCENARIA_KEEP", "maybe")
	err := config.NewDefaultConfig().LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCENARIA_KEEP")
}
