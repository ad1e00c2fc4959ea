package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManagerRunsHooksInPriorityOrder(t *testing.T) {
	sm := NewShutdownManager(noopLogger{}, time.Second)

	var order []string
	sm.RegisterHook(ShutdownHook{Name: "second", Priority: 20, Hook: func(context.Context) error {
		order = append(order, "second")
		return nil
	}})
	sm.RegisterHook(ShutdownHook{Name: "first", Priority: 5, Hook: func(context.Context) error {
		order = append(order, "first")
		return nil
	}})

	require.NoError(t, sm.Shutdown())
	require.Len(t, order, 2)
	assert.Equal(t, "first", order[0])
	assert.Equal(t, "second", order[1])
}

func TestShutdownManagerClosesShutdownChanAndReportsState(t *testing.T) {
	sm := NewShutdownManager(noopLogger{}, time.Second)
	assert.False(t, sm.IsShuttingDown())

	require.NoError(t, sm.Shutdown())
	assert.True(t, sm.IsShuttingDown())

	select {
	case <-sm.ShutdownChan():
	default:
		t.Fatal("ShutdownChan should be closed after Shutdown")
	}
}

func TestShutdownManagerRejectsConcurrentShutdown(t *testing.T) {
	sm := NewShutdownManager(noopLogger{}, time.Second)
	require.NoError(t, sm.Shutdown())
	assert.Error(t, sm.Shutdown())
}

func TestShutdownManagerReturnsErrorWhenHookFails(t *testing.T) {
	sm := NewShutdownManager(noopLogger{}, time.Second)
	sm.RegisterHook(ShutdownHook{Name: "broken", Priority: 1, Hook: func(context.Context) error {
		return assert.AnError
	}})
	assert.Error(t, sm.Shutdown())
}

func TestShutdownManagerTimesOutSlowHook(t *testing.T) {
	sm := NewShutdownManager(noopLogger{}, 10*time.Millisecond)
	sm.RegisterHook(ShutdownHook{Name: "slow", Priority: 1, Hook: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	assert.Error(t, sm.Shutdown())
}

func TestNewGracefulServerRegistersShutdownHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	defer srv.Close()

	httpServer := &http.Server{Addr: "127.0.0.1:0"}
	sm := NewShutdownManager(noopLogger{}, time.Second)
	NewGracefulServer(httpServer, sm, noopLogger{})

	require.NoError(t, sm.Shutdown())
}
