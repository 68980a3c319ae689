package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sparkeditor/spark/config"
	"github.com/sparkeditor/spark/internal/database"
	"github.com/sparkeditor/spark/internal/domain"
	httpHandler "github.com/sparkeditor/spark/internal/http"
	"github.com/sparkeditor/spark/internal/http/middleware"
	"github.com/sparkeditor/spark/internal/repository"
	"github.com/sparkeditor/spark/internal/service"
	"github.com/sparkeditor/spark/pkg/cache"
	"github.com/sparkeditor/spark/pkg/logger"
	"github.com/sparkeditor/spark/pkg/ratelimiter"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetDocumentRepository() domain.DocumentRepository

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitDB() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	documentRepo domain.DocumentRepository

	conversionService *service.ConversionService
	documentService   *service.DocumentService

	rateLimiter *ratelimiter.RateLimiter
	renderCache *cache.TTLCache[string]

	mux    *http.ServeMux
	server *http.Server

	serverMu      sync.RWMutex
	serverStarted chan struct{}

	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64
	requestWg       sync.WaitGroup
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitDB connects to the document store when it is enabled. An injected
// connection only gets the schema applied.
func (a *App) InitDB() error {
	if !a.config.Database.Enabled {
		a.logger.Info("Document store disabled, skipping database initialization")
		return nil
	}

	if a.db != nil {
		if err := database.InitializeDatabase(a.db); err != nil {
			return fmt.Errorf("failed to initialize database schema: %w", err)
		}
		return nil
	}

	password := a.config.Database.Password
	maskedPassword := ""
	if len(password) > 0 {
		maskedPassword = fmt.Sprintf("%c...%c", password[0], password[len(password)-1])
	}
	a.logger.Info(fmt.Sprintf("Connecting to database %s:%d, user %s, sslmode %s, password: %s, dbname: %s", a.config.Database.Host, a.config.Database.Port, a.config.Database.User, a.config.Database.SSLMode, maskedPassword, a.config.Database.DBName))

	db, err := database.ConnectToDatabase(&a.config.Database, a.config.Environment)
	if err != nil {
		a.logger.Error(err.Error())
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a.db = db
	return nil
}

func (a *App) InitRepositories() error {
	if a.config.Database.Enabled && a.db != nil {
		a.documentRepo = repository.NewDocumentRepository(a.db)
	}
	return nil
}

func (a *App) InitServices() error {
	a.conversionService = service.NewConversionService(a.config, a.logger)
	if a.documentRepo != nil {
		var opts []service.DocumentServiceOption
		if ttl := a.config.Export.RenderCacheTTL; ttl > 0 {
			if a.renderCache == nil {
				a.renderCache = cache.New[string](ttl, a.config.Export.RenderCacheSize)
			}
			opts = append(opts, service.WithRenderCache(a.renderCache))
		}
		a.documentService = service.NewDocumentService(a.documentRepo, a.conversionService, a.logger, opts...)
	}

	if limits := a.config.RateLimit; limits.Enabled() && a.rateLimiter == nil {
		a.rateLimiter = ratelimiter.New()
		if limits.ConversionRequests > 0 {
			a.rateLimiter.SetPolicy(rateLimitConversion, limits.ConversionRequests, limits.Window)
		}
		if limits.StoreRequests > 0 {
			a.rateLimiter.SetPolicy(rateLimitStore, limits.StoreRequests, limits.Window)
		}
		a.logger.WithFields(map[string]interface{}{
			"conversion_requests": limits.ConversionRequests,
			"store_requests":      limits.StoreRequests,
			"window":              limits.Window.String(),
		}).Info("Rate limiting enabled")
	}
	return nil
}

const (
	rateLimitConversion = "conversion"
	rateLimitStore      = "store"
)

// rateLimitNamespace maps a request to its budget, or "" when the route has
// none configured
func (a *App) rateLimitNamespace(r *http.Request) string {
	switch r.URL.Path {
	case "/api/documents.import", "/api/documents.importBatch", "/api/documents.export":
		if a.config.RateLimit.ConversionRequests > 0 {
			return rateLimitConversion
		}
		return ""
	}
	if strings.HasPrefix(r.URL.Path, "/api/documents.") && a.config.RateLimit.StoreRequests > 0 {
		return rateLimitStore
	}
	return ""
}

func (a *App) InitHandlers() error {
	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	storeEnabled := a.documentService != nil

	httpHandler.NewRootHandler(a.config.Version, storeEnabled).RegisterRoutes(a.mux)
	httpHandler.NewConversionHandler(a.conversionService, a.logger).RegisterRoutes(a.mux)
	if storeEnabled {
		httpHandler.NewDocumentHandler(a.documentService, a.logger).RegisterRoutes(a.mux)
	}

	return nil
}

// Handler wraps the mux with the middleware chain, outermost first:
// graceful shutdown, CORS, request logging, rate limit, body limit
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux
	handler = middleware.BodyLimitMiddleware(a.config.Import.MaxInputBytes + bodyEnvelopeBytes)(handler)
	if a.rateLimiter != nil {
		handler = middleware.RateLimitMiddleware(a.rateLimiter, a.rateLimitNamespace)(handler)
	}
	handler = middleware.LoggingMiddleware(a.logger)(handler)
	handler = middleware.CORSMiddleware(a.config.Server.CORSAllowOrigin)(handler)
	return a.gracefulShutdownMiddleware(handler)
}

// bodyEnvelopeBytes leaves room for the JSON around the markup
const bodyEnvelopeBytes = 64 << 10

// Start starts the HTTP server
func (a *App) Start() error {
	if a.isShuttingDown() {
		return http.ErrServerClosed
	}

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("port", a.config.Server.Port).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	if a.config.Server.SSL.Enabled {
		a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
		return a.server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
	}

	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones up to the
// shutdown timeout and closes the database
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr == nil {
		a.logger.Info("HTTP server shutdown completed")
	}

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	select {
	case <-requestsDone:
		a.logger.Info("All requests completed")
	case <-shutdownCtx.Done():
		a.logger.WithField("active_requests", a.getActiveRequestCount()).Warn("Shutdown timeout reached, forcing shutdown")
		if shutdownErr == nil {
			shutdownErr = fmt.Errorf("shutdown timeout exceeded")
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil && shutdownErr == nil {
		shutdownErr = cleanupErr
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

func (a *App) cleanupResources() error {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.renderCache != nil {
		a.renderCache.Stop()
	}
	if a.db != nil {
		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing database connection")
			return err
		}
	}
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created and initialized
// Returns true if the server started successfully, false if context expired
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting Spark conversion service")

	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

func (a *App) GetConfig() *config.Config {
	return a.config
}

func (a *App) GetLogger() logger.Logger {
	return a.logger
}

func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetDocumentRepository() domain.DocumentRepository {
	return a.documentRepo
}

func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
}

// GetShutdownContext returns a context that is canceled when shutdown starts
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks in-flight requests and refuses new ones
// once shutdown has started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		atomic.AddInt64(&a.activeRequests, 1)
		a.requestWg.Add(1)
		defer func() {
			atomic.AddInt64(&a.activeRequests, -1)
			a.requestWg.Done()
		}()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
