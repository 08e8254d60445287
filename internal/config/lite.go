// Package config provides configuration management for the protein atlas
// server. This file contains the lightweight configuration for standalone
// operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no config file and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// API settings
	NCBIAPIKey string // Optional: NCBI API key for higher rate limits

	// Server settings
	HTTPPort int // HTTP port

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".protein-atlas")

	return &LiteConfig{
		DataDir:   dataDir,
		HTTPPort:  8080,
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("PROTEIN_ATLAS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	cfg.NCBIAPIKey = os.Getenv("NCBI_API_KEY")

	if v := os.Getenv("PROTEIN_ATLAS_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	if v := os.Getenv("PROTEIN_ATLAS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PROTEIN_ATLAS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// HistoryDBPath returns the path to the search-history SQLite database.
func (c *LiteConfig) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
