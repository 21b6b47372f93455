package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Matching MatchingConfig
	Scoring  ScoringConfig
	Ingest   IngestConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// MatchingConfig holds resolver thresholds and candidate-scan caps.
// The caps bound per-record latency against a large property corpus;
// a true best match outside the window is an accepted approximation.
type MatchingConfig struct {
	AddressThreshold   int // minimum Levenshtein-ratio score for a fuzzy address match
	OwnerThreshold     int // minimum token-sort-ratio score for an owner-name match
	AddressCandidates  int // bounded window for the fuzzy address scan
	OwnerPatternLimit  int // result-set cap for the partial owner-name lookup
	OwnerFallbackLimit int // cap for the last-resort owner scan
	AddressBlocklist   []string
	KnownCities        []string
}

// ScoringConfig holds the CDS qualification threshold.
type ScoringConfig struct {
	QualifiedThreshold float64
}

// IngestConfig holds batch persistence and flat-file archive settings.
type IngestConfig struct {
	BatchSize  int
	ArchiveDir string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "distress")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MATCH_ADDRESS_THRESHOLD", 85)
	v.SetDefault("MATCH_OWNER_THRESHOLD", 75)
	v.SetDefault("MATCH_ADDRESS_CANDIDATES", 1000)
	v.SetDefault("MATCH_OWNER_PATTERN_LIMIT", 50)
	v.SetDefault("MATCH_OWNER_FALLBACK_LIMIT", 100)
	v.SetDefault("MATCH_ADDRESS_BLOCKLIST", "not provided;right of way;intersection;unknown")
	v.SetDefault("MATCH_KNOWN_CITIES", "tampa;brandon;riverview;plant city;valrico;seffner;lutz;ruskin;thonotosassa;gibsonton;apollo beach;sun city center;wimauma;odessa;dover;lithia;mango;temple terrace")
	v.SetDefault("SCORE_QUALIFIED_THRESHOLD", 70.0)
	v.SetDefault("INGEST_BATCH_SIZE", 500)
	v.SetDefault("INGEST_ARCHIVE_DIR", "data/archive")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseList(v.GetString("CORS_ORIGINS"), ","),
		},
		Matching: MatchingConfig{
			AddressThreshold:   v.GetInt("MATCH_ADDRESS_THRESHOLD"),
			OwnerThreshold:     v.GetInt("MATCH_OWNER_THRESHOLD"),
			AddressCandidates:  v.GetInt("MATCH_ADDRESS_CANDIDATES"),
			OwnerPatternLimit:  v.GetInt("MATCH_OWNER_PATTERN_LIMIT"),
			OwnerFallbackLimit: v.GetInt("MATCH_OWNER_FALLBACK_LIMIT"),
			AddressBlocklist:   parseList(v.GetString("MATCH_ADDRESS_BLOCKLIST"), ";"),
			KnownCities:        parseList(v.GetString("MATCH_KNOWN_CITIES"), ";"),
		},
		Scoring: ScoringConfig{
			QualifiedThreshold: v.GetFloat64("SCORE_QUALIFIED_THRESHOLD"),
		},
		Ingest: IngestConfig{
			BatchSize:  v.GetInt("INGEST_BATCH_SIZE"),
			ArchiveDir: v.GetString("INGEST_ARCHIVE_DIR"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate matching config
	if c.Matching.AddressThreshold < 0 || c.Matching.AddressThreshold > 100 {
		return fmt.Errorf("MATCH_ADDRESS_THRESHOLD must be between 0 and 100")
	}
	if c.Matching.OwnerThreshold < 0 || c.Matching.OwnerThreshold > 100 {
		return fmt.Errorf("MATCH_OWNER_THRESHOLD must be between 0 and 100")
	}
	if c.Matching.AddressCandidates < 1 {
		return fmt.Errorf("MATCH_ADDRESS_CANDIDATES must be at least 1")
	}
	if c.Matching.OwnerPatternLimit < 1 {
		return fmt.Errorf("MATCH_OWNER_PATTERN_LIMIT must be at least 1")
	}
	if c.Matching.OwnerFallbackLimit < 1 {
		return fmt.Errorf("MATCH_OWNER_FALLBACK_LIMIT must be at least 1")
	}

	// Validate scoring config
	if c.Scoring.QualifiedThreshold < 0 || c.Scoring.QualifiedThreshold > 100 {
		return fmt.Errorf("SCORE_QUALIFIED_THRESHOLD must be between 0 and 100")
	}

	// Validate ingest config
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be at least 1")
	}

	return nil
}

// parseList splits a separated string into a slice of trimmed values.
func parseList(raw, sep string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
