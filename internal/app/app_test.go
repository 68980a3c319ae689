package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/config"
	"github.com/sparkeditor/spark/pkg/logger"
)

func createTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "debug",
		Version:     config.VERSION,
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSAllowOrigin: "*",
		},
		Database: config.DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "spark_test",
			SSLMode: "disable",
		},
		Import: config.ImportConfig{
			BlocksPerSection: 5,
			MaxDepth:         32,
			MaxInputBytes:    1 << 20,
			Sanitize:         true,
		},
		Export: config.ExportConfig{DefaultTitle: "Spark document"},
		Batch:  config.BatchConfig{Concurrency: 2},
	}
}

func serve(t *testing.T, a *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestNewApp(t *testing.T) {
	cfg := createTestConfig()
	log := logger.NewTestLogger(t)

	a := NewApp(cfg, WithLogger(log))

	assert.Equal(t, cfg, a.GetConfig())
	assert.Equal(t, log, a.GetLogger())
	assert.NotNil(t, a.GetMux())
	assert.Nil(t, a.GetDB())
	assert.NotNil(t, a.GetShutdownContext())
	assert.False(t, a.IsServerCreated())
}

func TestApp_InitializeWithoutStore(t *testing.T) {
	a := NewApp(createTestConfig(), WithLogger(logger.NewTestLogger(t))).(*App)

	require.NoError(t, a.Initialize())
	assert.Nil(t, a.GetDocumentRepository())
	assert.Nil(t, a.renderCache)
	assert.Nil(t, a.rateLimiter)

	t.Run("health check", func(t *testing.T) {
		w := serve(t, a, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("import endpoint", func(t *testing.T) {
		w := serve(t, a, http.MethodPost, "/api/documents.import", `{"html":"<h1>Hello</h1>"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"layout":"generic"`)
		assert.Contains(t, w.Body.String(), `"text":"Hello"`)
	})

	t.Run("store endpoints are not registered", func(t *testing.T) {
		w := serve(t, a, http.MethodGet, "/api/documents.list", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Document store is disabled")
	})
}

func TestApp_InitializeWithStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS documents").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX").WillReturnResult(sqlmock.NewResult(0, 0))

	cfg := createTestConfig()
	cfg.Database.Enabled = true
	cfg.Export.RenderCacheTTL = time.Minute
	a := NewApp(cfg, WithMockDB(db), WithLogger(logger.NewTestLogger(t))).(*App)

	require.NoError(t, a.Initialize())
	assert.NotNil(t, a.GetDocumentRepository())
	assert.NotNil(t, a.renderCache)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM documents`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sections", "warnings", "created_at", "updated_at"}))

	w := serve(t, a, http.MethodGet, "/api/documents.list", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"documents":[],"total_count":0,"limit":20,"offset":0}`, w.Body.String())

	mock.ExpectClose()
	require.NoError(t, a.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_BodyLimit(t *testing.T) {
	cfg := createTestConfig()
	cfg.Import.MaxInputBytes = 10
	a := NewApp(cfg, WithLogger(logger.NewTestLogger(t))).(*App)
	require.NoError(t, a.Initialize())

	w := serve(t, a, http.MethodPost, "/api/documents.import", `{"html":"`+strings.Repeat("x", bodyEnvelopeBytes+100)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestApp_RateLimit(t *testing.T) {
	cfg := createTestConfig()
	cfg.RateLimit = config.RateLimitConfig{ConversionRequests: 1, Window: time.Minute}
	a := NewApp(cfg, WithLogger(logger.NewTestLogger(t))).(*App)
	require.NoError(t, a.Initialize())
	defer a.Shutdown(context.Background())

	require.NotNil(t, a.rateLimiter)

	assert.Equal(t, http.StatusOK, serve(t, a, http.MethodPost, "/api/documents.import", `{"html":"<p>a</p>"}`).Code)

	w := serve(t, a, http.MethodPost, "/api/documents.export", `{"sections":[]}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// routes without a budget pass through
	assert.Equal(t, http.StatusOK, serve(t, a, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, a, http.MethodGet, "/api/documents.list", "").Code)
}

func TestApp_RateLimitNamespace(t *testing.T) {
	cfg := createTestConfig()
	cfg.RateLimit = config.RateLimitConfig{StoreRequests: 10, Window: time.Minute}
	a := NewApp(cfg, WithLogger(logger.NewTestLogger(t))).(*App)

	tests := map[string]string{
		"/api/documents.import":      "",
		"/api/documents.importBatch": "",
		"/api/documents.create":      rateLimitStore,
		"/api/documents.render":      rateLimitStore,
		"/healthz":                   "",
	}
	for path, want := range tests {
		assert.Equal(t, want, a.rateLimitNamespace(httptest.NewRequest(http.MethodGet, path, nil)), path)
	}

	cfg.RateLimit.ConversionRequests = 5
	assert.Equal(t, rateLimitConversion, a.rateLimitNamespace(httptest.NewRequest(http.MethodPost, "/api/documents.export", nil)))
}

func TestApp_GracefulShutdown(t *testing.T) {
	t.Run("rejects requests after shutdown starts", func(t *testing.T) {
		a := NewApp(createTestConfig(), WithLogger(logger.NewTestLogger(t))).(*App)
		require.NoError(t, a.Initialize())

		require.NoError(t, a.Shutdown(context.Background()))

		w := serve(t, a, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("tracks active requests", func(t *testing.T) {
		a := NewApp(createTestConfig(), WithLogger(logger.NewTestLogger(t))).(*App)

		seen := make(chan int64, 1)
		handler := a.gracefulShutdownMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen <- a.GetActiveRequestCount()
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, int64(1), <-seen)
		assert.Equal(t, int64(0), a.GetActiveRequestCount())
	})

	t.Run("start and shutdown", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.Server.Port = 0
		a := NewApp(cfg, WithLogger(logger.NewTestLogger(t))).(*App)
		require.NoError(t, a.Initialize())
		a.SetShutdownTimeout(2 * time.Second)

		errCh := make(chan error, 1)
		go func() { errCh <- a.Start() }()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.True(t, a.WaitForServerStart(ctx))

		require.NoError(t, a.Shutdown(context.Background()))
		assert.ErrorIs(t, <-errCh, http.ErrServerClosed)
	})
}
