package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
storage:
  db_path: "/tmp/pipefit-test.db"
log:
  path: "/tmp/pipefit-test.log"
  level: "debug"
timer:
  tick_interval: "250ms"
notifications:
  desktop: false
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PIPEFIT_DB_PATH", "PIPEFIT_LOG_PATH", "PIPEFIT_LOG_LEVEL",
		"PIPEFIT_TICK_INTERVAL", "PIPEFIT_DESKTOP_NOTIFY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadValid(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pipefit-test.db", cfg.Storage.DBPath)
	assert.Equal(t, "/tmp/pipefit-test.log", cfg.Log.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Timer.TickInterval)
	assert.False(t, cfg.Notifications.Desktop)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def, cfg)
	assert.Equal(t, 100*time.Millisecond, cfg.Timer.TickInterval)
	assert.True(t, cfg.Notifications.Desktop)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeTemp(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, Default().Storage.DBPath, cfg.Storage.DBPath)
	assert.Equal(t, 100*time.Millisecond, cfg.Timer.TickInterval)
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("PIPEFIT_DB_PATH", "/env/db.sqlite")
	t.Setenv("PIPEFIT_LOG_PATH", "/env/log.txt")
	t.Setenv("PIPEFIT_LOG_LEVEL", "error")
	t.Setenv("PIPEFIT_TICK_INTERVAL", "50ms")
	t.Setenv("PIPEFIT_DESKTOP_NOTIFY", "true")

	cfg, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "/env/db.sqlite", cfg.Storage.DBPath)
	assert.Equal(t, "/env/log.txt", cfg.Log.Path)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 50*time.Millisecond, cfg.Timer.TickInterval)
	assert.True(t, cfg.Notifications.Desktop)
}

func TestEnvOverrideInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PIPEFIT_TICK_INTERVAL", "soon"},
		{"PIPEFIT_DESKTOP_NOTIFY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load(writeTemp(t, validYAML))
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero tick", "timer:\n  tick_interval: 0s\n", "tick_interval"},
		{"negative tick", "timer:\n  tick_interval: -1s\n", "tick_interval"},
		{"slow tick", "timer:\n  tick_interval: 2s\n", "at most 1s"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"empty db path", "storage:\n  db_path: \"\"\n", "db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeTemp(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeTemp(t, "storage: [unclosed"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	assert.Equal(t, "config.yaml", filepath.Base(p))
	assert.Equal(t, "pipefit", filepath.Base(filepath.Dir(p)))
}
