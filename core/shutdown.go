package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownManager runs priority-ordered hooks when the facade stops: the
// scheduler thread/worker pool first, then ancillary servers like web/'s
// HTTP listener, each bounded by a shared timeout.
type ShutdownManager struct {
	timeout        time.Duration
	hooks          []ShutdownHook
	mu             sync.Mutex
	shutdownChan   chan struct{}
	isShuttingDown bool
	logger         Logger
}

// ShutdownHook is one unit of cleanup work. Hooks run one at a time in
// ascending Priority order (lower first); RegisterHook keeps the slice
// sorted.
type ShutdownHook struct {
	Name     string
	Priority int
	Hook     func(context.Context) error
}

// NewShutdownManager returns a manager with no hooks registered yet.
func NewShutdownManager(logger Logger, timeout time.Duration) *ShutdownManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ShutdownManager{
		timeout:      timeout,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}
}

// RegisterHook adds hook, insertion-sorting it into priority order.
func (sm *ShutdownManager) RegisterHook(hook ShutdownHook) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.hooks = append(sm.hooks, hook)
	for i := len(sm.hooks) - 1; i > 0 && sm.hooks[i].Priority < sm.hooks[i-1].Priority; i-- {
		sm.hooks[i], sm.hooks[i-1] = sm.hooks[i-1], sm.hooks[i]
	}
}

// ListenForShutdown calls Shutdown on SIGINT/SIGTERM/SIGQUIT.
func (sm *ShutdownManager) ListenForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		sm.logger.Warningf("received shutdown signal: %v", sig)
		_ = sm.Shutdown()
	}()
}

// Shutdown runs every registered hook in ascending Priority order, one at a
// time, under a shared timeout,
// returning once they've all completed, the timeout elapses, or a second
// caller finds shutdown already underway.
func (sm *ShutdownManager) Shutdown() error {
	sm.mu.Lock()
	if sm.isShuttingDown {
		sm.mu.Unlock()
		return ErrShutdownInProgress
	}
	sm.isShuttingDown = true
	hooks := append([]ShutdownHook(nil), sm.hooks...)
	sm.mu.Unlock()

	sm.logger.Noticef("starting graceful shutdown (timeout: %v)", sm.timeout)

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	close(sm.shutdownChan)

	var wg sync.WaitGroup
	errs := make(chan error, len(hooks))

	// Each hook waits for the one before it to finish.
	prev := make(chan struct{})
	close(prev)
	for _, hook := range hooks {
		wg.Add(1)
		next := make(chan struct{})
		go func(h ShutdownHook, prev <-chan struct{}, next chan<- struct{}) {
			defer wg.Done()
			defer close(next)
			<-prev

			sm.logger.Debugf("executing shutdown hook: %s (priority: %d)", h.Name, h.Priority)
			if err := h.Hook(ctx); err != nil {
				sm.logger.Errorf("shutdown hook %q failed: %v", h.Name, err)
				errs <- fmt.Errorf("hook %s: %w", h.Name, err)
				return
			}
			sm.logger.Debugf("shutdown hook %q completed", h.Name)
		}(hook, prev, next)
		prev = next
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		sm.logger.Noticef("graceful shutdown completed")
	case <-ctx.Done():
		sm.logger.Errorf("graceful shutdown timed out after %v", sm.timeout)
		return ErrShutdownTimedOut
	}

	close(errs)
	var joined []error
	for err := range errs {
		joined = append(joined, err)
	}
	return errors.Join(joined...)
}

// ShutdownChan is closed the moment Shutdown begins running hooks.
func (sm *ShutdownManager) ShutdownChan() <-chan struct{} {
	return sm.shutdownChan
}

// IsShuttingDown reports whether Shutdown has been called.
func (sm *ShutdownManager) IsShuttingDown() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.isShuttingDown
}

// GracefulServer registers web/'s admin HTTP server as a shutdown hook, so
// it stops accepting connections after the scheduler (priority 10) but
// still within the same shared timeout.
type GracefulServer struct {
	server          *http.Server
	shutdownManager *ShutdownManager
	logger          Logger
}

// NewGracefulServer registers server's shutdown hook at priority 20 and
// returns the wrapper (kept only so callers can extend it later).
func NewGracefulServer(server *http.Server, shutdownManager *ShutdownManager, logger Logger) *GracefulServer {
	gs := &GracefulServer{
		server:          server,
		shutdownManager: shutdownManager,
		logger:          logger,
	}

	shutdownManager.RegisterHook(ShutdownHook{
		Name:     "http-server",
		Priority: 20,
		Hook:     gs.gracefulStop,
	})

	return gs
}

func (gs *GracefulServer) gracefulStop(ctx context.Context) error {
	gs.logger.Noticef("stopping admin HTTP server")

	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Errorf("admin HTTP server shutdown error: %v", err)
		return err
	}

	gs.logger.Noticef("admin HTTP server stopped")
	return nil
}
