// Package http exposes the web surface: the station lookup and job
// submission endpoints, the SSE progress stream, and the operational
// endpoints (health, readiness, metrics).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geokshitij/flowData/internal/domain"
)

// StationResolver resolves a state code into a normalized station list.
type StationResolver interface {
	Resolve(ctx context.Context, stateCd, parameterCd string) ([]domain.Station, error)
}

// JobRunner executes a download job, producing a finite event sequence.
type JobRunner interface {
	Run(ctx context.Context, job domain.Job) <-chan domain.Event
}

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	resolver   StationResolver
	runner     JobRunner
	jobs       *jobRegistry
	logger     *slog.Logger
}

// NewServer creates the gin engine and wires all routes.
func NewServer(addr string, resolver StationResolver, runner JobRunner, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     engine,
			ReadTimeout: 10 * time.Second,
			// No write timeout: the SSE progress stream stays open for the
			// whole download run.
			IdleTimeout: 120 * time.Second,
		},
		engine:   engine,
		resolver: resolver,
		runner:   runner,
		jobs:     newJobRegistry(),
		logger:   logger,
	}

	engine.GET("/", s.handleIndex)
	engine.POST("/api/stations", s.handleStations)
	engine.POST("/api/jobs", s.handleCreateJob)
	engine.GET("/api/jobs/:id/events", s.handleJobEvents)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the gin engine, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
