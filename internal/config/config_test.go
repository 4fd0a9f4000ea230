package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tourforms/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{SearchPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "tourdesk", cfg.Directory.Redis.Key)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tourdesk.yaml", `
log:
  level: debug
store:
  driver: sqlite
  contract: true
directory:
  redis:
    addr: localhost:6379
metrics:
  enabled: true
`)
	t.Setenv("TOURDESK_LOG_FORMAT", "json")
	t.Setenv("TOURDESK_STORE_DSN", "/var/lib/tourdesk/records.db")

	cfg, err := config.Load(config.LoadOptions{SearchPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, config.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/tourdesk/records.db", cfg.Store.DSN)
	assert.True(t, cfg.Store.Contract)
	assert.Equal(t, "localhost:6379", cfg.Directory.Redis.Addr)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "TOURDESK_OPTIONS_FILE=configs/options.yaml\n")
	// godotenv never overrides variables that are already set
	t.Setenv("TOURDESK_OPTIONS_FILE", "")
	require.NoError(t, os.Unsetenv("TOURDESK_OPTIONS_FILE"))

	cfg, err := config.Load(config.LoadOptions{
		SearchPaths: []string{dir},
		EnvFiles:    []string{filepath.Join(dir, "missing.env"), envFile},
	})
	require.NoError(t, err)
	assert.Equal(t, "configs/options.yaml", cfg.Options.File)
}

func TestInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
log:
  level: loud
store:
  driver: postgres
`)
	_, err := config.Load(config.LoadOptions{File: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "store.driver")

	_, err = config.Load(config.LoadOptions{File: filepath.Join(dir, "absent.yaml")})
	assert.Error(t, err, "an explicit file must exist")
}
