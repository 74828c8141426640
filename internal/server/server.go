// Package server exposes the analysis pipeline over HTTP: a multipart upload
// endpoint that returns the PDF report, plus health and metrics endpoints.
package server

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spacesedan/ecsa/internal/pipeline"
)

const (
	MAX_UPLOAD_BYTES = 10 << 20
	BODY_LIMIT       = "12M"
)

// Analyzer runs one analysis. *pipeline.Pipeline satisfies it.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

type Server struct {
	echo       *echo.Echo
	addr       string
	analyzer   Analyzer
	llmHealthy *atomic.Bool
	startTime  time.Time
}

// NewServer wires routes and middleware. llmHealthy may be nil when no
// health monitor runs.
func NewServer(addr string, analyzer Analyzer, llmHealthy *atomic.Bool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(BODY_LIMIT))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.Info("[Server] Request", attrs...)
			return nil
		},
	}))

	srv := &Server{
		echo:       e,
		addr:       addr,
		analyzer:   analyzer,
		llmHealthy: llmHealthy,
		startTime:  time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting server", slog.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
