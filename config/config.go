package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.0"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Import      ImportConfig
	Export      ExportConfig
	Batch       BatchConfig
	RateLimit   RateLimitConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
	SSL  SSLConfig
	// CORSAllowOrigin is written to Access-Control-Allow-Origin
	CORSAllowOrigin string
}

type SSLConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type DatabaseConfig struct {
	// Enabled turns on the document store and its endpoints
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ImportConfig struct {
	BlocksPerSection int
	MaxDepth         int
	MaxInputBytes    int64
	Sanitize         bool
}

type ExportConfig struct {
	DefaultTitle string
	// RenderCacheTTL keeps rendered stored documents in memory; zero disables
	RenderCacheTTL  time.Duration
	RenderCacheSize int
}

type BatchConfig struct {
	Concurrency int
}

// RateLimitConfig holds per client request budgets. Zero disables a budget.
type RateLimitConfig struct {
	// ConversionRequests limits import, batch import and export calls
	ConversionRequests int
	// StoreRequests limits the document store endpoints
	StoreRequests int
	Window        time.Duration
}

func (c RateLimitConfig) Enabled() bool {
	return c.ConversionRequests > 0 || c.StoreRequests > 0
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "spark")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("IMPORT_BLOCKS_PER_SECTION", 5)
	v.SetDefault("IMPORT_MAX_DEPTH", 32)
	v.SetDefault("IMPORT_MAX_INPUT_BYTES", 5<<20)
	v.SetDefault("IMPORT_SANITIZE", true)
	v.SetDefault("EXPORT_DEFAULT_TITLE", "Spark document")
	v.SetDefault("EXPORT_RENDER_CACHE_TTL", "5m")
	v.SetDefault("EXPORT_RENDER_CACHE_SIZE", 256)
	v.SetDefault("BATCH_CONCURRENCY", 4)
	v.SetDefault("RATE_LIMIT_CONVERSION_REQUESTS", 0)
	v.SetDefault("RATE_LIMIT_STORE_REQUESTS", 0)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
			SSL: SSLConfig{
				Enabled:  v.GetBool("SSL_ENABLED"),
				CertFile: v.GetString("SSL_CERT_FILE"),
				KeyFile:  v.GetString("SSL_KEY_FILE"),
			},
			CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Import: ImportConfig{
			BlocksPerSection: v.GetInt("IMPORT_BLOCKS_PER_SECTION"),
			MaxDepth:         v.GetInt("IMPORT_MAX_DEPTH"),
			MaxInputBytes:    v.GetInt64("IMPORT_MAX_INPUT_BYTES"),
			Sanitize:         v.GetBool("IMPORT_SANITIZE"),
		},
		Export: ExportConfig{
			DefaultTitle:    v.GetString("EXPORT_DEFAULT_TITLE"),
			RenderCacheTTL:  v.GetDuration("EXPORT_RENDER_CACHE_TTL"),
			RenderCacheSize: v.GetInt("EXPORT_RENDER_CACHE_SIZE"),
		},
		Batch: BatchConfig{
			Concurrency: v.GetInt("BATCH_CONCURRENCY"),
		},
		RateLimit: RateLimitConfig{
			ConversionRequests: v.GetInt("RATE_LIMIT_CONVERSION_REQUESTS"),
			StoreRequests:      v.GetInt("RATE_LIMIT_STORE_REQUESTS"),
			Window:             v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.SSL.Enabled && (c.Server.SSL.CertFile == "" || c.Server.SSL.KeyFile == "") {
		return fmt.Errorf("SSL_CERT_FILE and SSL_KEY_FILE are required when SSL_ENABLED is set")
	}
	if c.Import.BlocksPerSection <= 0 {
		return fmt.Errorf("IMPORT_BLOCKS_PER_SECTION must be positive, got %d", c.Import.BlocksPerSection)
	}
	if c.Import.MaxDepth <= 0 {
		return fmt.Errorf("IMPORT_MAX_DEPTH must be positive, got %d", c.Import.MaxDepth)
	}
	if c.Import.MaxInputBytes <= 0 {
		return fmt.Errorf("IMPORT_MAX_INPUT_BYTES must be positive, got %d", c.Import.MaxInputBytes)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Export.RenderCacheTTL < 0 {
		return fmt.Errorf("EXPORT_RENDER_CACHE_TTL must not be negative, got %s", c.Export.RenderCacheTTL)
	}
	if c.RateLimit.ConversionRequests < 0 || c.RateLimit.StoreRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_CONVERSION_REQUESTS and RATE_LIMIT_STORE_REQUESTS must not be negative")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	return nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
