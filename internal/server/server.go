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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"
)

const (
	// shutdownTimeout bounds how long in-flight scrapes may run after ctx is cancelled.
	shutdownTimeout = 5 * time.Second

	// readHeaderTimeout guards against clients that open a connection and stall.
	readHeaderTimeout = 10 * time.Second

	// DefaultMaxConnections caps concurrent scrape connections.
	DefaultMaxConnections = 16
)

// Server exposes a Prometheus gatherer over HTTP.
//
// Server provides three endpoints:
//   - GET /: Current metric values in the text exposition format
//   - GET /metrics: Same as /
//   - GET /healthz: Liveness check returning "ok"
//
// Each scrape reads whatever the gatherer currently holds; the server never
// writes to it.
type Server struct {
	gatherer       prometheus.Gatherer
	addr           string
	maxConnections int
	logger         *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new exposition [Server].
//
// Parameters:
//   - gatherer: Registry to render on each scrape
//   - addr: TCP address to listen on, e.g. ":6123" or "127.0.0.1:0"
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(gatherer prometheus.Gatherer, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		gatherer:       gatherer,
		addr:           addr,
		maxConnections: DefaultMaxConnections,
		logger:         logger,
	}
}

// SetMaxConnections changes the concurrent connection cap. Values below 1
// are ignored. Must be called before [Server.Start].
func (s *Server) SetMaxConnections(n int) {
	if n < 1 {
		return
	}
	s.maxConnections = n
}

// Handler returns the HTTP handler serving the exposition routes.
func (s *Server) Handler() http.Handler {
	metrics := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorLog:      slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		ErrorHandling: promhttp.ContinueOnError,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/", metrics)
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	return r
}

// Start begins serving scrape requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server runs until ctx is cancelled, then shuts down with
// a 5-second timeout.
//
// Returns an error if the server fails to bind to the configured address.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.listener = ln
	s.mu.Unlock()

	go func() {
		err := httpServer.Serve(netutil.LimitListener(ln, s.maxConnections))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("metrics server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the address the server is bound to, or the configured
// address if [Server.Start] has not succeeded yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL returns the scrape URL for the bound address.
func (s *Server) URL() string {
	host, port, err := net.SplitHostPort(s.Addr())
	if err != nil {
		return "http://" + s.Addr() + "/"
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
