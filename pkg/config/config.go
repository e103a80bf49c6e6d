package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Env  string
	Port string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Pipeline
	SourcesFile   string
	ChunkSize     int
	CheckpointDir string // empty disables JSON checkpoints

	// Derivation
	CorpusPrefix   string
	CodeNameLocale string

	// Extraction
	ConsentField string
}

// Source describes one forum database to import.
type Source struct {
	Name     string `toml:"name"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"dbname"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// ConnString returns a pgx-compatible connection string.
func (s Source) ConnString() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=prefer",
		s.Host, port, s.User, s.Password, s.DBName,
	)
}

// Redaction holds the omission policy flags. Exposed as explicit
// configuration rather than hardcoded behavior.
type Redaction struct {
	OmitPrivateMessages  bool `toml:"omit_private_messages"`
	OmitProtectedContent bool `toml:"omit_protected_content"`
	OmitSystemUsers      bool `toml:"omit_system_users"`
}

// Manifest is the TOML file listing source databases and the redaction
// policy applied to all of them.
type Manifest struct {
	Sources   []Source  `toml:"sources"`
	Redaction Redaction `toml:"redaction"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
		SourcesFile:    getEnv("SOURCES_FILE", "sources.toml"),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 1000),
		CheckpointDir:  getEnv("CHECKPOINT_DIR", ""),
		CorpusPrefix:   getEnv("CORPUS_PREFIX", "ethno-"),
		CodeNameLocale: getEnv("CODE_NAME_LOCALE", "en"),
		ConsentField:   getEnv("CONSENT_FIELD", "edgeryders_consent"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	return nil
}

// LoadManifest parses the source manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest %s lists no sources", path)
	}
	seen := make(map[string]bool, len(m.Sources))
	for _, s := range m.Sources {
		if s.Name == "" {
			return nil, fmt.Errorf("manifest %s: every source needs a name", path)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("manifest %s: duplicate source name %q", path, s.Name)
		}
		seen[s.Name] = true
	}
	return &m, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
