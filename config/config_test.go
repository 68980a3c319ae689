package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&Config{Environment: "development"}).IsDevelopment())
	assert.False(t, (&Config{Environment: "production"}).IsDevelopment())
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.False(t, (&Config{Environment: "staging"}).IsProduction())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "*", cfg.Server.CORSAllowOrigin)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "spark", cfg.Database.DBName)
	assert.Equal(t, 5, cfg.Import.BlocksPerSection)
	assert.Equal(t, 32, cfg.Import.MaxDepth)
	assert.Equal(t, int64(5<<20), cfg.Import.MaxInputBytes)
	assert.True(t, cfg.Import.Sanitize)
	assert.Equal(t, "Spark document", cfg.Export.DefaultTitle)
	assert.Equal(t, 5*time.Minute, cfg.Export.RenderCacheTTL)
	assert.Equal(t, 256, cfg.Export.RenderCacheSize)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.False(t, cfg.RateLimit.Enabled())
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, VERSION, cfg.Version)
}

func TestLoadWithOptions(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "testhost")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "spark_test")
	t.Setenv("DB_SSLMODE", "disable")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IMPORT_BLOCKS_PER_SECTION", "3")
	t.Setenv("IMPORT_MAX_DEPTH", "10")
	t.Setenv("IMPORT_MAX_INPUT_BYTES", "1024")
	t.Setenv("IMPORT_SANITIZE", "false")
	t.Setenv("EXPORT_DEFAULT_TITLE", "Signup form")
	t.Setenv("EXPORT_RENDER_CACHE_TTL", "0s")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("RATE_LIMIT_CONVERSION_REQUESTS", "30")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "testhost", cfg.Database.Host)
	assert.Equal(t, "testuser", cfg.Database.User)
	assert.Equal(t, "testpass", cfg.Database.Password)
	assert.Equal(t, "spark_test", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3, cfg.Import.BlocksPerSection)
	assert.Equal(t, 10, cfg.Import.MaxDepth)
	assert.Equal(t, int64(1024), cfg.Import.MaxInputBytes)
	assert.False(t, cfg.Import.Sanitize)
	assert.Equal(t, "Signup form", cfg.Export.DefaultTitle)
	assert.Zero(t, cfg.Export.RenderCacheTTL)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.True(t, cfg.RateLimit.Enabled())
	assert.Equal(t, 30, cfg.RateLimit.ConversionRequests)
	assert.Zero(t, cfg.RateLimit.StoreRequests)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT must be between 1 and 65535"},
		{"zero chunk size", map[string]string{"IMPORT_BLOCKS_PER_SECTION": "0"}, "IMPORT_BLOCKS_PER_SECTION must be positive"},
		{"negative depth", map[string]string{"IMPORT_MAX_DEPTH": "-1"}, "IMPORT_MAX_DEPTH must be positive"},
		{"zero input limit", map[string]string{"IMPORT_MAX_INPUT_BYTES": "0"}, "IMPORT_MAX_INPUT_BYTES must be positive"},
		{"zero concurrency", map[string]string{"BATCH_CONCURRENCY": "0"}, "BATCH_CONCURRENCY must be positive"},
		{"negative render cache ttl", map[string]string{"EXPORT_RENDER_CACHE_TTL": "-1s"}, "EXPORT_RENDER_CACHE_TTL must not be negative"},
		{"negative rate limit", map[string]string{"RATE_LIMIT_STORE_REQUESTS": "-1"}, "must not be negative"},
		{"rate limit without window", map[string]string{"RATE_LIMIT_STORE_REQUESTS": "5", "RATE_LIMIT_WINDOW": "0s"}, "RATE_LIMIT_WINDOW must be positive"},
		{"ssl without files", map[string]string{"SSL_ENABLED": "true"}, "SSL_CERT_FILE and SSL_KEY_FILE are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithOptions(LoadOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithoutEnvFile(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{EnvFile: ".env.missing-for-test"})
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
