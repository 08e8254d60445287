package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	History     HistoryConfig     `mapstructure:"history"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ExternalAPIConfig represents external API configuration for all adapters
type ExternalAPIConfig struct {
	UniProt     UniProtConfig     `mapstructure:"uniprot"`
	NCBI        NCBIConfig        `mapstructure:"ncbi"`
	Structure   StructureConfig   `mapstructure:"structure"`
	String      StringConfig      `mapstructure:"string"`
	DiseaseDrug DiseaseDrugConfig `mapstructure:"disease_drug"`
}

// UniProtConfig represents UniProt REST API configuration
type UniProtConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SearchURL string        `mapstructure:"search_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per second
}

// NCBIConfig represents NCBI E-utilities configuration
type NCBIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per second, NCBI etiquette is 3
	APIKey    string        `mapstructure:"api_key"`    // optional, raises the rate limit
}

// StructureConfig represents RCSB PDB and AlphaFold configuration
type StructureConfig struct {
	PDBSearchURL    string        `mapstructure:"pdb_search_url"`
	PDBDataURL      string        `mapstructure:"pdb_data_url"`
	AlphaFoldURL    string        `mapstructure:"alphafold_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DetailCacheSize int           `mapstructure:"detail_cache_size"`
}

// StringConfig represents STRING interaction network configuration
type StringConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RequiredScore int           `mapstructure:"required_score"`
	Limit         int           `mapstructure:"limit"`
	Species       int           `mapstructure:"species"`
}

// DiseaseDrugConfig represents the disease/drug association source
// configuration
type DiseaseDrugConfig struct {
	DisGeNETURL string        `mapstructure:"disgenet_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// HistoryConfig represents search-history persistence configuration
type HistoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
