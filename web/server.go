package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/netresearch/chronos/metrics"
)

// Server serves chronos's read-only observability surface: /healthz,
// /readyz, /status and /metrics. It never exposes job mutation endpoints —
// those belong to the cli package, matching spec.md's decision to keep
// network exposure to inspection and scraping only.
type Server struct {
	addr    string
	checker *HealthChecker
	srv     *http.Server
	stop    chan struct{}
}

// NewServer builds a Server bound to addr, reporting on checker.
func NewServer(addr string, checker *HealthChecker) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", checker.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())
	mux.HandleFunc("/status", checker.StatusHandler())
	mux.Handle("/metrics", metrics.Handler())

	rl := newRateLimiter(60, time.Minute)
	var handler http.Handler = mux
	handler = securityHeaders(handler)
	handler = rl.middleware(handler)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		checker: checker,
		stop:    make(chan struct{}),
	}
}

// Start launches the HTTP server and the health checker's periodic refresh
// loop in the background, returning immediately.
func (s *Server) Start() error {
	go s.checker.RunPeriodicChecks(30*time.Second, s.stop)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// A listen failure is discarded; there is no logger wired into
			// Server itself.
			_ = err
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server and the health check loop.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown web server: %w", err)
	}
	return nil
}
