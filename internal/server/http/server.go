// Package http serves the results index over HTTP.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/metrics"
)

// Server exposes the card index over HTTP.
type Server struct {
	echo    *echo.Echo
	builder *index.Builder
	metrics *metrics.Metrics
	addr    string
}

// New creates the server and registers its routes.
func New(addr string, builder *index.Builder, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		builder: builder,
		metrics: m,
		addr:    addr,
	}

	e.Use(middleware.Recover())
	if m != nil {
		e.Use(s.countRequests)
	}

	e.GET("/healthz", s.handleHealthz)
	e.GET("/api/v1/cards", s.handleListCards)
	e.GET("/api/v1/cards/*", s.handleGetCard)
	e.GET("/api/v1/index", s.handleGetIndex)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return s
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// countRequests records per-route request counters.
func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		status := c.Response().Status
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
		}

		s.metrics.HTTPRequestsTotal.
			WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
			Inc()
		return err
	}
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"cards":  s.builder.Registry().Len(),
	})
}
