// Package server is the HTTP transport of the affect grid: GET / renders the
// grid surface and POST /save_coordinates hands submissions to the pipeline.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/roach88/affectgrid/internal/page"
	"github.com/roach88/affectgrid/internal/pipeline"
)

// Route paths.
const (
	PathIndex  = "/"
	PathIngest = "/save_coordinates"
)

// Ingester accepts raw submission bodies. Implemented by *pipeline.Pipeline.
type Ingester interface {
	Ingest(ctx context.Context, body []byte) (pipeline.Result, error)
}

// Status reports runtime lifecycle states for the HTTP server.
type Status string

const (
	StatusStarting Status = "starting"
	StatusReady    Status = "ready"
	StatusDraining Status = "draining"
)

// Server wraps the HTTP listener and handlers of the grid.
type Server struct {
	settings Settings
	ingester Ingester
	renderer *page.Renderer
	pageData page.Data
	tokens   TokenGenerator
	limiter  *rate.Limiter
	logger   *slog.Logger
	handler  http.Handler

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	status   Status
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTokenGenerator overrides the session token source.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(s *Server) {
		if g != nil {
			s.tokens = g
		}
	}
}

// WithPageData overrides what GET / renders.
func WithPageData(d page.Data) Option {
	return func(s *Server) {
		s.pageData = d
	}
}

// New prepares a server. The ingester is required.
func New(settings Settings, ingester Ingester, opts ...Option) (*Server, error) {
	if ingester == nil {
		return nil, fmt.Errorf("new server: ingester is required")
	}
	settings.normalize()

	renderer, err := page.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}

	s := &Server{
		settings: settings,
		ingester: ingester,
		renderer: renderer,
		pageData: page.DefaultData(),
		tokens:   UUIDv7Generator{},
		limiter:  rate.NewLimiter(rate.Inf, 0),
		logger:   slog.Default(),
		status:   StatusStarting,
	}
	if settings.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(settings.RateLimit), settings.Burst)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.pageData.Endpoint = PathIngest

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", s.handleIndex)
	mux.HandleFunc(PathIngest, s.handleIngest)
	s.handler = mux

	return s, nil
}

// Handler returns the routing handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Settings returns the normalized settings.
func (s *Server) Settings() Settings {
	return s.settings
}

// Start binds the TCP listener and begins serving HTTP traffic in the
// background. Serve errors other than a clean shutdown are reported on the
// returned channel, which is closed when serving stops.
func (s *Server) Start(ctx context.Context) (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil, fmt.Errorf("server already started")
	}

	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = listener

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if ctx != nil {
		srv.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = srv
	s.status = StatusReady

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http serve failed", "error", err)
			errc <- err
		}
	}()

	s.logger.Info("listening", "addr", listener.Addr().String())
	return errc, nil
}

// Shutdown stops accepting new connections and waits for in-flight requests.
// Without a deadline on ctx, Settings.ShutdownTimeout applies.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.ShutdownTimeout)
		defer cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL of the running server.
func (s *Server) BaseURL() string {
	if addr := s.Addr(); addr != "" {
		return "http://" + addr
	}
	return "http://" + s.settings.Address()
}

// Status reports the server's lifecycle state.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
