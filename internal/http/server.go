// Package http provides the HTTP server for the sync agent API: courier
// reads and writes, queue inspection and control, and health endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	courierHTTP "github.com/allisson/courier-sync/internal/courier/http"
	queueHTTP "github.com/allisson/courier-sync/internal/queue/http"
)

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	logger *slog.Logger
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig carries the handlers and middleware options used to build the router.
type RouterConfig struct {
	QueueHandler      *queueHTTP.QueueHandler
	DriverHandler     *courierHTTP.DriverHandler
	OrderHandler      *courierHTTP.OrderHandler
	MetricsMiddleware gin.HandlerFunc
	CORSEnabled       bool
	CORSAllowOrigins  string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// SetupRouter builds the gin router with middleware and all API routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}
	{
		if cfg.DriverHandler != nil {
			v1.PUT("/drivers/:id", cfg.DriverHandler.UpsertHandler)
			v1.GET("/drivers/:id", cfg.DriverHandler.GetHandler)
			v1.GET("/drivers", cfg.DriverHandler.ListHandler)
			v1.PUT("/drivers/:id/location", cfg.DriverHandler.UpdateLocationHandler)
			v1.PUT("/drivers/:id/availability", cfg.DriverHandler.UpdateAvailabilityHandler)
			v1.DELETE("/drivers/:id", cfg.DriverHandler.DeleteHandler)
		}

		if cfg.OrderHandler != nil {
			v1.POST("/orders", cfg.OrderHandler.CreateHandler)
			v1.GET("/orders/:id", cfg.OrderHandler.GetHandler)
			v1.GET("/orders", cfg.OrderHandler.ListHandler)
			v1.PUT("/orders/:id/status", cfg.OrderHandler.UpdateStatusHandler)
			v1.PUT("/orders/:id/driver", cfg.OrderHandler.AssignDriverHandler)
			v1.POST("/orders/:id/cancel", cfg.OrderHandler.CancelHandler)
			v1.DELETE("/orders/:id", cfg.OrderHandler.DeleteHandler)
		}

		if cfg.QueueHandler != nil {
			queue := v1.Group("/queue")
			{
				queue.GET("/pending-count", cfg.QueueHandler.PendingCountHandler)
				queue.GET("/failed", cfg.QueueHandler.ListFailedHandler)
				queue.POST("/failed/:id/retry", cfg.QueueHandler.RetryFailedHandler)
				queue.POST("/retry-all", cfg.QueueHandler.RetryAllFailedHandler)
				queue.POST("/drain", cfg.QueueHandler.DrainHandler)
				queue.POST("/cleanup-expired", cfg.QueueHandler.CleanupExpiredHandler)
			}
		}
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the local store is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}

	ready := true
	if s.db == nil {
		ready = false
		components["database"] = "error"
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		ready = false
		components["database"] = "error"
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
