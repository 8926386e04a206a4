// Package httpapi serves product fixture payloads over HTTP. It stands in
// for the upstream product-data endpoint during local development and
// end-to-end testing; production runs point SP_BASE_URL at the real service.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Host            string
	Port            int
	FixturesDir     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	logger zerolog.Logger
	opts   Options
}

func NewServer(logger zerolog.Logger, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		logger: logger,
		opts:   opts,
	}
}

// Start runs the fixture server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server is not initialized")
	}
	if strings.TrimSpace(s.opts.FixturesDir) == "" {
		return fmt.Errorf("fixtures directory is required")
	}
	info, err := os.Stat(s.opts.FixturesDir)
	if err != nil {
		return fmt.Errorf("stat fixtures directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.opts.FixturesDir)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/api/product/:id", s.handleProduct)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("fixture server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Str("fixtures", s.opts.FixturesDir).
		Msg("fixture server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start fixture server: %w", err)
	}
	s.logger.Info().Msg("fixture server stopped")
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleProduct serves <fixtures>/<id>.json verbatim. The id is restricted to
// digits so the path join cannot escape the fixtures directory.
func (s *Server) handleProduct(c echo.Context) error {
	id := c.Param("id")
	if !isNumericID(id) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "product id must contain only digits",
		})
	}

	path := filepath.Join(s.opts.FixturesDir, id+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("no fixture for product %s", id),
			})
		}
		return fmt.Errorf("read fixture %s: %w", path, err)
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, raw)
}

func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
