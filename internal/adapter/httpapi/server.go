package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/evertl/reelpilot/internal/infrastructure/logger"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(port int, cfg RouterConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: NewRouter(cfg),
			// No write timeout: the events endpoint holds its stream open
			// for the lifetime of a job.
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	logger.Info.Printf("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
