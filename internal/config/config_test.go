package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clickhelper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dbPath: /tmp/ch/test.db
logLevel: DEBUG
httpTimeout: 5s
keyring:
  backend: file
providers:
  geminiBaseUrl: http://localhost:9999
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ch/test.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "file", cfg.Keyring.Backend)
	assert.Equal(t, filepath.Join("/tmp/ch", "keys"), cfg.Keyring.FileDir)
	assert.Equal(t, "http://localhost:9999", cfg.Providers.GeminiBaseURL)
	assert.Equal(t, time.Second, cfg.AutoSave.Delay)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n")
	t.Setenv("CLICKHELPER_LOGLEVEL", "error")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "logLevel: loud\n")

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
