package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for review-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// ContractsDir is the directory of rendered document PDFs served under /contracts/.
	// Leave empty to disable static serving.
	ContractsDir string `yaml:"contracts_dir" env:"CONTRACTS_DIR" env-default:""`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// CORS configuration
	CORS CORSConfig `yaml:"cors"`

	// Notify configuration for the CLM review postback
	Notify NotifyConfig `yaml:"notify"`

	// MigrationsPath is the directory containing golang-migrate SQL files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`

	// SeedFile is an optional SQL file executed when the documents table is empty.
	SeedFile string `yaml:"seed_file" env:"SEED_FILE" env-default:""`

	// AttributionCacheTTLSeconds bounds how long a computed change-attribution
	// result may be served before recomputation. The cache is invalidated on
	// every merge regardless.
	AttributionCacheTTLSeconds int `yaml:"attribution_cache_ttl_seconds" env:"ATTRIBUTION_CACHE_TTL_SECONDS" env-default:"30"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"contract_review_db"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// URL builds a postgres connection string from the individual fields.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	// AllowedOrigins lists origins permitted to call the API. "*" allows all.
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	AllowedMethods   []string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-separator:"," env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-separator:"," env-default:"Content-Type,Authorization"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
}

// NotifyConfig holds configuration for the CLM postback client.
type NotifyConfig struct {
	// Enabled controls whether reviews are posted downstream at all.
	Enabled bool `yaml:"enabled" env:"NOTIFY_ENABLED" env-default:"false"`

	// Mock writes payloads to OutputFile instead of making HTTP calls.
	Mock bool `yaml:"mock" env:"NOTIFY_MOCK" env-default:"true"`

	// Async delivers the postback in a background goroutine. Either way the
	// merge is already committed before delivery is attempted.
	Async bool `yaml:"async" env:"NOTIFY_ASYNC" env-default:"true"`

	BaseURL        string `yaml:"base_url" env:"NOTIFY_BASE_URL" env-default:"http://localhost:9999"`
	ReviewPath     string `yaml:"review_path" env:"NOTIFY_REVIEW_PATH" env-default:"/api/review"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"NOTIFY_TIMEOUT_SECONDS" env-default:"10"`
	APIKey         string `yaml:"-" env:"NOTIFY_API_KEY"` // Secret - not in YAML
	OutputFile     string `yaml:"output_file" env:"NOTIFY_OUTPUT_FILE" env-default:"./logs/review_postbacks.jsonl"`
	RetryCount     int    `yaml:"retry_count" env:"NOTIFY_RETRY_COUNT" env-default:"2"`
}

// Load reads configuration from config.yaml (if present) and the environment.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host must not be empty")
	}
	if c.AttributionCacheTTLSeconds < 0 {
		return fmt.Errorf("attribution cache TTL must not be negative")
	}
	if c.Notify.RetryCount < 0 {
		return fmt.Errorf("notify retry count must not be negative")
	}
	return nil
}
