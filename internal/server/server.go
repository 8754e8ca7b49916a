// Package server exposes mind-map layout and export over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/npratt/mindmap/internal/export"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/source"
)

const (
	// DefaultMaxBodyBytes caps request bodies.
	DefaultMaxBodyBytes = 4 << 20
	// readHeaderTimeout bounds slow clients.
	readHeaderTimeout = 10 * time.Second
	// drainTimeout bounds Run's own shutdown when its context is canceled.
	drainTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr         string
	CORSOrigins  []string
	MaxBodyBytes int64
	Direction    mindmap.Direction // Used when a request names none
	Export       export.Options
	Strict       bool // Reject mind-maps that fail schema validation
}

// Server renders mind-maps for HTTP clients. All requests share one layout
// adapter, so repeated views of the same expansion hit the layout cache.
type Server struct {
	opts      Options
	adapter   *mindmap.Adapter
	decoder   source.Decoder
	logger    *slog.Logger
	startTime time.Time

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

// New creates a Server that lays out through adapter.
func New(adapter *mindmap.Adapter, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Direction == "" {
		opts.Direction = mindmap.DirectionTB
	}
	return &Server{
		opts:      opts,
		adapter:   adapter,
		decoder:   source.Decoder{Strict: opts.Strict, Logger: logger},
		logger:    logger,
		startTime: time.Now(),
	}
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/layout", s.handleLayout)
	mux.HandleFunc("/export", s.handleExport)
	return Cors(s.opts.CORSOrigins)(s.logRequests(mux))
}

// Run listens on the configured address and serves until ctx is canceled
// or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.http != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.http = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("server started", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Addr returns the bound address once Run has started listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
