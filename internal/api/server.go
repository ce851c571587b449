// Package api exposes the HTTP surface of the acquisition pipeline.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/config"
	"github.com/retriever-media/retriever/internal/events"
	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/scheduler"
)

// Server handles HTTP requests.
type Server struct {
	echo   *echo.Echo
	hub    *events.Hub
	cfg    *config.Config
	logger zerolog.Logger

	huntService *hunt.Service
	runner      *hunt.Runner
	processor   *completion.Service
	sched       *scheduler.Scheduler
}

// NewServer creates a new API server over already-wired services.
func NewServer(cfg *config.Config, hub *events.Hub, huntService *hunt.Service, runner *hunt.Runner, processor *completion.Service, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		hub:         hub,
		cfg:         cfg,
		logger:      logger.With().Str("component", "api").Logger(),
		huntService: huntService,
		runner:      runner,
		processor:   processor,
		sched:       sched,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit("2M"))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/api/health", s.handleHealth)

	s.echo.GET("/api/search", s.handleSearch)
	s.echo.GET("/api/categories", s.handleCategories)

	s.echo.POST("/api/items/:id/hunt", s.handleHuntItem)
	s.echo.POST("/api/hunt/run", s.handleRunAutoHunt)
	s.echo.POST("/api/downloads/process", s.handleProcessDownloads)

	s.echo.GET("/api/tasks", s.handleListTasks)
	s.echo.POST("/api/tasks/:id/run", s.handleRunTask)

	s.echo.GET("/ws", s.hub.HandleWebSocket)
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("Starting HTTP server")
	err := s.echo.Start(address)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}
