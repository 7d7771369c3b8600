// Package api serves cards, the corpus and the run ledger as JSON.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/abdulachik/axitome/internal/caption"
	"github.com/abdulachik/axitome/internal/card"
	"github.com/abdulachik/axitome/internal/db"
	"github.com/abdulachik/axitome/internal/scheduler"
)

const (
	defaultRunLimit = 30
	maxRunLimit     = 365
)

// Config wires the server's collaborators. Store and Health may be nil.
type Config struct {
	Builder *card.Builder
	Store   *db.Store
	Health  *scheduler.Health
	Now     func() time.Time
}

// Server is the HTTP API.
type Server struct {
	Echo    *echo.Echo
	builder *card.Builder
	store   *db.Store
	health  *scheduler.Health
	now     func() time.Time
}

// New creates a server with its routes and middleware installed.
func New(cfg Config) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Echo:    e,
		builder: cfg.Builder,
		store:   cfg.Store,
		health:  cfg.Health,
		now:     now,
	}

	e.HTTPErrorHandler = s.httpErrorHandler
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	g := e.Group("/api")
	g.GET("/today", s.handleToday)
	g.GET("/day/:date", s.handleDay)
	g.GET("/quotes", s.handleQuotes)
	g.GET("/runs", s.handleRuns)

	return s
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	slog.Info("api listening", "addr", addr)
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
	case errors.Is(err, card.ErrLayoutOverflow), errors.Is(err, caption.ErrCaptionTooLong):
		he = echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "uri", c.Request().RequestURI, "error", err)
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	msg, ok := he.Message.(string)
	if !ok {
		msg = http.StatusText(he.Code)
	}
	if err := c.JSON(he.Code, map[string]string{"error": msg}); err != nil {
		slog.Warn("write error response", "error", err)
	}
}
