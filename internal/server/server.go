package server

import (
	"context"
	"time"

	"dupfinder/internal/auth"
	"dupfinder/internal/config"
	"dupfinder/internal/handlers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Deduplicator is the workflow behind the ticket endpoints
type Deduplicator interface {
	handlers.Searcher
	handlers.FeedbackRecorder
	handlers.StoreChecker
}

// Server represents the application server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    zerolog.Logger
	dedup     Deduplicator
	analytics handlers.SummaryProvider
}

// New creates a new server instance. analytics may be nil, in which case
// the analytics endpoint is not mounted.
func New(cfg *config.Config, dedup Deduplicator, analytics handlers.SummaryProvider, logger zerolog.Logger) *Server {
	return &Server{
		config:    cfg,
		dedup:     dedup,
		analytics: analytics,
		logger:    logger.With().Str("component", "http").Logger(),
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.setupRoutes()
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints stay at root level for monitoring
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/store", handlers.StoreHealthHandler(s.dedup, s.config.StoreBackend))

	api.GET("/", handlers.RootHandler(s.config.Version))
	api.POST("/search", handlers.SearchHandler(s.dedup, s.logger))
	api.POST("/feedback", handlers.FeedbackHandler(s.dedup, s.logger))
	api.GET("/feedback/:session_id", handlers.SessionHandler(s.dedup))

	if s.analytics != nil {
		api.GET("/analytics", handlers.AnalyticsHandler(s.analytics, s.logger), auth.Middleware(s.config.AdminToken))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
