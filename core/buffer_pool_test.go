package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferPoolGetAndPutRoundTrip(t *testing.T) {
	pool := NewBufferPool(1024, 4096, 1024*1024)

	buf, err := pool.Get()
	require.NoError(t, err)
	require.NotNil(t, buf)
	assert.Equal(t, int64(4096), buf.Size())

	_, err = buf.Write([]byte("hello"))
	require.NoError(t, err)

	pool.Put(buf)

	again, err := pool.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.TotalWritten())
}

func TestGetSizedClampsToConfiguredBounds(t *testing.T) {
	pool := NewBufferPool(1024, 4096, 8192)

	small, err := pool.GetSized(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), small.Size())

	large, err := pool.GetSized(1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(8192), large.Size())
}

func TestGetSizedSelectsNextStandardSizeAboveDefault(t *testing.T) {
	pool := NewBufferPool(1024, 4096, 65536)

	buf, err := pool.GetSized(5000)
	require.NoError(t, err)
	assert.Equal(t, int64(8192), buf.Size())
}

func TestPutIgnoresNilBuffer(t *testing.T) {
	pool := NewBufferPool(1024, 4096, 8192)
	assert.NotPanics(t, func() { pool.Put(nil) })
}

func TestGetStatsTracksGets(t *testing.T) {
	pool := NewBufferPool(1024, 4096, 8192)

	_, err := pool.Get()
	require.NoError(t, err)

	stats := pool.GetStats()
	assert.Equal(t, int64(1), stats["total_gets"])
}

func TestShutdownClearsPoolsAndStopsWorker(t *testing.T) {
	cfg := DefaultExecutionBufferPoolConfig()
	cfg.PoolSize = 0
	cfg.EnablePrewarming = false
	pool := NewExecutionBufferPool(cfg, noopLogger{})

	assert.NotPanics(t, pool.Shutdown)

	stats := pool.GetStats()
	assert.Equal(t, 0, stats["pool_count"])
}
