package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atomstore/internal/atoms"
)

// writeTempYAML creates a temp YAML file and returns its path.
func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "atomstore.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, BackendFile, c.Backend)
	assert.Equal(t, 30*time.Second, c.UpdateSaveDelay)
	assert.Equal(t, 500*time.Millisecond, c.PullSaveDelay)
	assert.Equal(t, 23*time.Hour, c.Cooldown)
	assert.NotEmpty(t, c.BuildID)
	assert.False(t, c.Profile().LowMemory)
	require.NoError(t, c.Validate())
}

func TestLoad_Full(t *testing.T) {
	p := writeTempYAML(t, `
backend: sqlite
sqlite_path: /tmp/a.db
build_id: build-7
low_memory: true
save_immediately: true
update_save_delay: 1m
pull_save_delay: 2s
cooldown: 1h
cooldowns:
  gba_event: 5m
  voice_call_session: 0s
log_level: debug
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, BackendSqlite, c.Backend)
	assert.Equal(t, "/tmp/a.db", c.SqlitePath)
	assert.Equal(t, "build-7", c.BuildID)
	assert.True(t, c.Profile().LowMemory)
	assert.True(t, c.SaveImmediately)
	assert.Equal(t, time.Minute, c.UpdateSaveDelay)
	assert.Equal(t, 2*time.Second, c.PullSaveDelay)
	assert.Equal(t, time.Hour, c.Cooldown)

	cd, err := c.KindCooldowns()
	require.NoError(t, err)
	assert.Equal(t, map[atoms.Kind]time.Duration{
		atoms.KindGbaEvent:         5 * time.Minute,
		atoms.KindVoiceCallSession: 0,
	}, cd)

	lvl, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_DebugShortensCooldown(t *testing.T) {
	c, err := Parse([]byte("debug: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.Cooldown)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown backend", "backend: redis\n", "unknown backend"},
		{"unknown kind", "cooldowns:\n  nope: 1h\n", "unknown atom kind"},
		{"negative delay", "pull_save_delay: -1s\n", "must not be negative"},
		{"negative cooldown", "cooldowns:\n  gba_event: -1h\n", "must not be negative"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"bad duration", "cooldown: soon\n", "parse config"},
		{"misspelled key", "cooldwons:\n  gba_event: 1h\n", "field cooldwons not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_EmptyDocumentUsesDefaults(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParse_UnknownBackendIsSentinel(t *testing.T) {
	_, err := Parse([]byte("backend: redis\n"))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
