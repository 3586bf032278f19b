package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// isolate runs the test in an empty directory, so no .env file is loaded.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{EnvLogLevel, EnvHistoryDB, EnvShowTotals, EnvLegacyEntities, EnvOFXDedupe} {
		v, ok := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if ok {
				os.Setenv(key, v)
			} else {
				os.Unsetenv(key)
			}
		})
	}
	return dir
}

func TestLoadMissingFile(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ldg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
history:
  path: /tmp/h.db
export:
  show_totals: true
  legacy_entities: true
ofx:
  dedupe: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Log:     LogConfig{Level: "debug"},
		History: HistoryConfig{Path: "/tmp/h.db"},
		Export:  ExportConfig{ShowTotals: true, LegacyEntities: true},
		OFX:     OFXConfig{Dedupe: false},
	}, cfg)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_HISTORY_DB=from-dotenv.db\n"), 0o644))
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvShowTotals, "true")
	t.Setenv(EnvOFXDedupe, "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "from-dotenv.db", cfg.History.Path)
	assert.True(t, cfg.Export.ShowTotals)
	assert.False(t, cfg.OFX.Dedupe)
}

func TestLoadInvalid(t *testing.T) {
	dir := isolate(t)

	t.Setenv(EnvShowTotals, "maybe")
	_, err := Load("")
	assert.ErrorContains(t, err, EnvShowTotals)

	t.Setenv(EnvShowTotals, "false")
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [oops"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "cannot parse config")
}

func TestLoadMalformedDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o644))
	_, err := Load("")
	assert.ErrorContains(t, err, "cannot load .env")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	cfg.Log.Level = "chatty"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")
}
