// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/allisson/courier-sync/internal/capture"
	"github.com/allisson/courier-sync/internal/config"
	"github.com/allisson/courier-sync/internal/connectivity"
	courierHTTP "github.com/allisson/courier-sync/internal/courier/http"
	courierUsecase "github.com/allisson/courier-sync/internal/courier/usecase"
	"github.com/allisson/courier-sync/internal/database"
	"github.com/allisson/courier-sync/internal/http"
	"github.com/allisson/courier-sync/internal/metrics"
	queueHTTP "github.com/allisson/courier-sync/internal/queue/http"
	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
	"github.com/allisson/courier-sync/internal/queue/worker"
	"github.com/allisson/courier-sync/internal/sender"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	queueMetrics    metrics.QueueMetrics

	// Sync queue
	queueRepo    queueUsecase.QueueRepository
	sender       sender.Sender
	queueUseCase queueUsecase.QueueUseCase
	queueHandler *queueHTTP.QueueHandler

	// Courier
	driverRepo     courierUsecase.DriverRepository
	orderRepo      courierUsecase.OrderRepository
	courierUseCase courierUsecase.CourierUseCase
	driverHandler  *courierHTTP.DriverHandler
	orderHandler   *courierHTTP.OrderHandler

	// Connectivity and replay
	monitor          *connectivity.Monitor
	coordinator      *worker.Coordinator
	captureTransport *capture.Transport

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                   sync.Mutex
	loggerInit           sync.Once
	dbInit               sync.Once
	txManagerInit        sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	queueMetricsInit     sync.Once
	queueRepoInit        sync.Once
	senderInit           sync.Once
	queueUseCaseInit     sync.Once
	queueHandlerInit     sync.Once
	driverRepoInit       sync.Once
	orderRepoInit        sync.Once
	courierUseCaseInit   sync.Once
	driverHandlerInit    sync.Once
	orderHandlerInit     sync.Once
	monitorInit          sync.Once
	coordinatorInit      sync.Once
	captureTransportInit sync.Once
	httpServerInit       sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// QueueMetrics returns the sync queue metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) QueueMetrics() (metrics.QueueMetrics, error) {
	var err error
	c.queueMetricsInit.Do(func() {
		c.queueMetrics, err = c.initQueueMetrics()
		if err != nil {
			c.initErrors["queueMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueMetrics"]; exists {
		return nil, storedErr
	}
	return c.queueMetrics, nil
}

// HTTPServer returns the HTTP server instance with all routes configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the Prometheus-backed metrics provider.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initQueueMetrics creates the sync queue metrics recorder.
func (c *Container) initQueueMetrics() (metrics.QueueMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for queue metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpQueueMetrics(), nil
	}
	return metrics.NewQueueMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	queueHandler, err := c.QueueHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue handler for http server: %w", err)
	}

	driverHandler, err := c.DriverHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get driver handler for http server: %w", err)
	}

	orderHandler, err := c.OrderHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get order handler for http server: %w", err)
	}

	var metricsMiddleware gin.HandlerFunc
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		metricsMiddleware = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	gin.SetMode(c.config.GetGinMode())

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(http.RouterConfig{
		QueueHandler:      queueHandler,
		DriverHandler:     driverHandler,
		OrderHandler:      orderHandler,
		MetricsMiddleware: metricsMiddleware,
		CORSEnabled:       c.config.CORSEnabled,
		CORSAllowOrigins:  c.config.CORSAllowOrigins,
		RateLimitEnabled:  c.config.RateLimitEnabled,
		RateLimitRPS:      c.config.RateLimitRequestsPerSec,
		RateLimitBurst:    c.config.RateLimitBurst,
	})

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
