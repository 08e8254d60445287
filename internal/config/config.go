package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/protein-atlas-server/internal/domain"
)

// Manager loads and holds the application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/protein-atlas-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("PROTEIN_ATLAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// External API defaults
	viper.SetDefault("external_api.uniprot.base_url", "https://rest.uniprot.org/uniprotkb")
	viper.SetDefault("external_api.uniprot.search_url", "https://rest.uniprot.org/uniprotkb/search")
	viper.SetDefault("external_api.uniprot.timeout", "10s")
	viper.SetDefault("external_api.uniprot.rate_limit", 5)

	viper.SetDefault("external_api.ncbi.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	viper.SetDefault("external_api.ncbi.timeout", "10s")
	viper.SetDefault("external_api.ncbi.rate_limit", 3)
	viper.SetDefault("external_api.ncbi.api_key", "")

	viper.SetDefault("external_api.structure.pdb_search_url", "https://search.rcsb.org/rcsbsearch/v2/query")
	viper.SetDefault("external_api.structure.pdb_data_url", "https://data.rcsb.org/rest/v1/core/entry")
	viper.SetDefault("external_api.structure.alphafold_url", "https://alphafold.ebi.ac.uk/api")
	viper.SetDefault("external_api.structure.timeout", "15s")
	viper.SetDefault("external_api.structure.detail_cache_size", 256)

	viper.SetDefault("external_api.string.base_url", "https://string-db.org/api")
	viper.SetDefault("external_api.string.timeout", "10s")
	viper.SetDefault("external_api.string.required_score", 400)
	viper.SetDefault("external_api.string.limit", 10)
	viper.SetDefault("external_api.string.species", 9606)

	viper.SetDefault("external_api.disease_drug.disgenet_url", "https://www.disgenet.org/api")
	viper.SetDefault("external_api.disease_drug.timeout", "10s")

	// History defaults
	viper.SetDefault("history.db_path", "./data/history.db")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetExternalAPIConfig returns external API configuration
func (m *Manager) GetExternalAPIConfig() *domain.ExternalAPIConfig {
	return &m.config.ExternalAPI
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetHistoryConfig returns history persistence configuration
func (m *Manager) GetHistoryConfig() *domain.HistoryConfig {
	return &m.config.History
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.ExternalAPI.UniProt.BaseURL == "" {
		return fmt.Errorf("UniProt base URL is required")
	}
	if config.ExternalAPI.NCBI.BaseURL == "" {
		return fmt.Errorf("NCBI base URL is required")
	}
	if config.ExternalAPI.Structure.PDBSearchURL == "" {
		return fmt.Errorf("PDB search URL is required")
	}
	if config.ExternalAPI.String.BaseURL == "" {
		return fmt.Errorf("STRING base URL is required")
	}

	if config.History.DBPath == "" {
		return fmt.Errorf("history database path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
