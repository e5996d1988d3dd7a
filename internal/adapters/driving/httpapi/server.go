package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP API for Ubuzima.
type Server struct {
	ports    *Ports
	settings domain.ServerSettings
	origins  *originMatcher
	limiter  *rate.Limiter
	handler  http.Handler
}

// NewServer creates a server. A zero RateLimit disables rate limiting;
// a zero RequestTimeout leaves requests unbounded.
func NewServer(ports *Ports, settings domain.ServerSettings) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingChatService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:    ports,
		settings: settings,
		origins:  newOriginMatcher(settings.AllowedOrigins),
	}
	if settings.RateLimit > 0 {
		burst := max(settings.RateBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(settings.RateLimit), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /chat", s.rateLimit(http.HandlerFunc(s.handleChat)))
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /datasets/summary", s.handleDatasetSummary)

	s.handler = s.requestID(s.accessLog(s.cors(mux)))
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", ln.Addr())
	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestContext applies the configured per-request timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.settings.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.settings.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}
