package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Empty(t, cfg.NCBIAPIKey)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("PROTEIN_ATLAS_DATA_DIR", "/tmp/test-atlas")
	os.Setenv("PROTEIN_ATLAS_HTTP_PORT", "9090")
	os.Setenv("PROTEIN_ATLAS_LOG_LEVEL", "debug")
	os.Setenv("PROTEIN_ATLAS_LOG_FORMAT", "text")
	os.Setenv("NCBI_API_KEY", "test-key")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-atlas", cfg.DataDir)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "test-key", cfg.NCBIAPIKey)
}

func TestLoadLiteConfig_InvalidPortIgnored(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("PROTEIN_ATLAS_HTTP_PORT", "not-a-port")
	defer clearEnvVars(t)

	cfg := LoadLiteConfig()
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLiteConfig_HistoryDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.protein-atlas"}

	assert.Equal(t, "/home/user/.protein-atlas/history.db", cfg.HistoryDBPath())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "atlas")}

	require.NoError(t, cfg.EnsureDataDir())

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"PROTEIN_ATLAS_DATA_DIR",
		"PROTEIN_ATLAS_HTTP_PORT",
		"PROTEIN_ATLAS_LOG_LEVEL",
		"PROTEIN_ATLAS_LOG_FORMAT",
		"NCBI_API_KEY",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
