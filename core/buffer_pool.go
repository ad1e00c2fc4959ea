package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/armon/circbuf"
)

// ExecutionBufferPoolConfig configures the per-size pools backing captured
// job stdout/stderr (Execution.out/Execution.err in context.go).
type ExecutionBufferPoolConfig struct {
	MinSize          int64         `json:"minSize"`
	DefaultSize      int64         `json:"defaultSize"`
	MaxSize          int64         `json:"maxSize"`
	PoolSize         int           `json:"poolSize"`         // buffers to pre-allocate per size
	ShrinkThreshold  float64       `json:"shrinkThreshold"`  // usage share below which a size is reported underutilized
	ShrinkInterval   time.Duration `json:"shrinkInterval"`   // how often to run the adaptive usage check
	EnableMetrics    bool          `json:"enableMetrics"`
	EnablePrewarming bool          `json:"enablePrewarming"`
}

// DefaultExecutionBufferPoolConfig sizes pools around the capture bound
// context.go uses for a job's captured output (maxStreamSize, 10MB).
func DefaultExecutionBufferPoolConfig() *ExecutionBufferPoolConfig {
	return &ExecutionBufferPoolConfig{
		MinSize:          1024,
		DefaultSize:      256 * 1024,
		MaxSize:          maxStreamSize,
		PoolSize:         50,
		ShrinkThreshold:  0.3,
		ShrinkInterval:   5 * time.Minute,
		EnableMetrics:    true,
		EnablePrewarming: true,
	}
}

// ExecutionBufferPool is a multi-tier sync.Pool keyed by buffer size,
// handing out ring buffers (circbuf.Buffer) for job execution capture
// without pinning every execution to a single fixed-size allocation.
type ExecutionBufferPool struct {
	config     *ExecutionBufferPoolConfig
	pools      map[int64]*sync.Pool
	poolsMutex sync.RWMutex

	totalGets     int64
	totalPuts     int64
	totalMisses   int64 // had to allocate instead of reusing a pooled buffer
	customBuffers int64 // buffers allocated outside the standard size ladder

	usageTracking map[int64]int64
	usageMutex    sync.RWMutex
	workerWg      sync.WaitGroup
	shrinkTicker  *time.Ticker
	shrinkStop    chan struct{}

	logger Logger
}

// NewExecutionBufferPool creates a pool with pre-populated standard-size
// tiers and starts its adaptive usage worker when config.ShrinkInterval > 0.
func NewExecutionBufferPool(config *ExecutionBufferPoolConfig, logger Logger) *ExecutionBufferPool {
	if config == nil {
		config = DefaultExecutionBufferPoolConfig()
	}

	p := &ExecutionBufferPool{
		config:        config,
		pools:         make(map[int64]*sync.Pool),
		usageTracking: make(map[int64]int64),
		shrinkStop:    make(chan struct{}),
		logger:        logger,
	}

	standardSizes := []int64{
		config.MinSize,
		config.DefaultSize,
		config.MaxSize / 4,
		config.MaxSize / 2,
		config.MaxSize,
	}
	for _, size := range standardSizes {
		p.createPoolForSize(size)
	}

	if config.EnablePrewarming {
		p.prewarmPools()
	}

	if config.ShrinkInterval > 0 {
		p.shrinkTicker = time.NewTicker(config.ShrinkInterval)
		p.workerWg.Add(1)
		go p.adaptiveManagementWorker()
	}

	return p
}

// Get returns a buffer sized for config.DefaultSize.
func (p *ExecutionBufferPool) Get() (*circbuf.Buffer, error) {
	return p.GetSized(p.config.DefaultSize)
}

// GetSized returns a buffer sized for requestedSize, rounded up to the
// nearest standard tier and clamped to [MinSize, MaxSize].
func (p *ExecutionBufferPool) GetSized(requestedSize int64) (*circbuf.Buffer, error) {
	atomic.AddInt64(&p.totalGets, 1)

	targetSize := p.selectOptimalSize(requestedSize)
	p.trackUsage(targetSize)

	pool := p.getPoolForSize(targetSize)
	if pool == nil {
		atomic.AddInt64(&p.customBuffers, 1)
		buf, err := circbuf.NewBuffer(targetSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create buffer of size %d: %w", targetSize, err)
		}
		return buf, nil
	}

	if pooledItem := pool.Get(); pooledItem != nil {
		if buf, ok := pooledItem.(*circbuf.Buffer); ok {
			return buf, nil
		}
	}

	atomic.AddInt64(&p.totalMisses, 1)
	buf, err := circbuf.NewBuffer(targetSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer of size %d: %w", targetSize, err)
	}
	return buf, nil
}

// Put resets buf and returns it to the pool for its size. A buffer sized
// outside the standard tiers is left for GC.
func (p *ExecutionBufferPool) Put(buf *circbuf.Buffer) {
	if buf == nil {
		return
	}

	atomic.AddInt64(&p.totalPuts, 1)
	buf.Reset()

	if pool := p.getPoolForSize(buf.Size()); pool != nil {
		pool.Put(buf)
	}
}

// selectOptimalSize rounds requestedSize up to the next standard tier.
func (p *ExecutionBufferPool) selectOptimalSize(requestedSize int64) int64 {
	if requestedSize < p.config.MinSize {
		return p.config.MinSize
	}
	if requestedSize > p.config.MaxSize {
		return p.config.MaxSize
	}
	if requestedSize <= p.config.DefaultSize {
		return p.config.DefaultSize
	}

	tiers := []int64{
		p.config.DefaultSize,
		p.config.DefaultSize * 2,
		p.config.DefaultSize * 4,
		p.config.DefaultSize * 8,
		p.config.MaxSize,
	}
	for _, size := range tiers {
		if requestedSize <= size {
			return size
		}
	}
	return p.config.MaxSize
}

// getPoolForSize returns the pool for size, creating one only if size is a
// standard tier (ad-hoc sizes fall back to a plain allocation).
func (p *ExecutionBufferPool) getPoolForSize(size int64) *sync.Pool {
	p.poolsMutex.RLock()
	if pool, exists := p.pools[size]; exists {
		p.poolsMutex.RUnlock()
		return pool
	}
	p.poolsMutex.RUnlock()

	p.poolsMutex.Lock()
	defer p.poolsMutex.Unlock()

	if pool, exists := p.pools[size]; exists {
		return pool
	}
	if p.isStandardSize(size) {
		return p.createPoolForSize(size)
	}
	return nil
}

func (p *ExecutionBufferPool) createPoolForSize(size int64) *sync.Pool {
	pool := &sync.Pool{
		New: func() interface{} {
			buf, err := circbuf.NewBuffer(size)
			if err != nil {
				if p.logger != nil {
					p.logger.Errorf("failed to create buffer of size %d: %v", size, err)
				}
				return nil
			}
			return buf
		},
	}

	p.pools[size] = pool

	if p.config.EnableMetrics && p.logger != nil {
		p.logger.Debugf("created buffer pool for size %d bytes", size)
	}

	return pool
}

// isStandardSize reports whether size is one of the standard tiers: MinSize,
// DefaultSize and its 2x/4x multiples, and MaxSize/4, MaxSize/2, MaxSize.
func (p *ExecutionBufferPool) isStandardSize(size int64) bool {
	standardSizes := []int64{
		p.config.MinSize,
		p.config.DefaultSize,
		p.config.DefaultSize * 2,
		p.config.DefaultSize * 4,
		p.config.MaxSize / 4,
		p.config.MaxSize / 2,
		p.config.MaxSize,
	}
	for _, standardSize := range standardSizes {
		if size == standardSize {
			return true
		}
	}
	return false
}

func (p *ExecutionBufferPool) trackUsage(size int64) {
	p.usageMutex.Lock()
	p.usageTracking[size]++
	p.usageMutex.Unlock()
}

// prewarmPools pre-allocates config.PoolSize buffers per standard tier so
// the first jobs to execute after startup don't pay allocation cost.
func (p *ExecutionBufferPool) prewarmPools() {
	p.poolsMutex.RLock()
	defer p.poolsMutex.RUnlock()

	for size, pool := range p.pools {
		filled := 0
		for i := 0; i < p.config.PoolSize; i++ {
			buf, err := circbuf.NewBuffer(size)
			if err != nil {
				if p.logger != nil {
					p.logger.Errorf("failed to pre-warm buffer %d of size %d: %v", i, size, err)
				}
				continue
			}
			pool.Put(buf)
			filled++
		}
		if p.logger != nil {
			p.logger.Debugf("pre-warmed pool for size %d with %d/%d buffers", size, filled, p.config.PoolSize)
		}
	}
}

func (p *ExecutionBufferPool) adaptiveManagementWorker() {
	defer p.workerWg.Done()
	for {
		select {
		case <-p.shrinkStop:
			return
		case <-p.shrinkTicker.C:
			p.performAdaptiveManagement()
		}
	}
}

// performAdaptiveManagement reports (but does not yet act on) size tiers
// whose usage share fell below ShrinkThreshold since the last tick.
func (p *ExecutionBufferPool) performAdaptiveManagement() {
	p.usageMutex.RLock()
	usage := make(map[int64]int64, len(p.usageTracking))
	for size, count := range p.usageTracking {
		usage[size] = count
	}
	p.usageMutex.RUnlock()

	p.usageMutex.Lock()
	p.usageTracking = make(map[int64]int64)
	p.usageMutex.Unlock()

	var totalUsage int64
	for _, count := range usage {
		totalUsage += count
	}
	if totalUsage == 0 {
		return
	}

	p.poolsMutex.RLock()
	for size := range p.pools {
		utilizationRate := float64(usage[size]) / float64(totalUsage)
		if utilizationRate < p.config.ShrinkThreshold && p.logger != nil {
			p.logger.Debugf("buffer pool size %d has low utilization: %.2f%%", size, utilizationRate*100)
		}
	}
	p.poolsMutex.RUnlock()
}

// GetStats returns get/put/hit-rate counters alongside the current pool
// layout, for the /status and /metrics surfaces in web/.
func (p *ExecutionBufferPool) GetStats() map[string]interface{} {
	p.poolsMutex.RLock()
	poolCount := len(p.pools)
	poolSizes := make([]int64, 0, len(p.pools))
	for size := range p.pools {
		poolSizes = append(poolSizes, size)
	}
	p.poolsMutex.RUnlock()

	p.usageMutex.RLock()
	currentUsage := make(map[int64]int64, len(p.usageTracking))
	for size, count := range p.usageTracking {
		currentUsage[size] = count
	}
	p.usageMutex.RUnlock()

	totalGets := atomic.LoadInt64(&p.totalGets)
	totalMisses := atomic.LoadInt64(&p.totalMisses)

	hitRate := float64(0)
	if totalGets > 0 {
		hitRate = float64(totalGets-totalMisses) / float64(totalGets) * 100
	}

	return map[string]interface{}{
		"total_gets":       totalGets,
		"total_puts":       atomic.LoadInt64(&p.totalPuts),
		"total_misses":     totalMisses,
		"hit_rate_percent": hitRate,
		"custom_buffers":   atomic.LoadInt64(&p.customBuffers),
		"pool_count":       poolCount,
		"pool_sizes":       poolSizes,
		"current_usage":    currentUsage,
		"config": map[string]interface{}{
			"default_size": p.config.DefaultSize,
			"max_size":     p.config.MaxSize,
		},
	}
}

// Shutdown stops the adaptive worker and drops every pooled buffer.
func (p *ExecutionBufferPool) Shutdown() {
	if p.shrinkTicker != nil {
		p.shrinkTicker.Stop()
		close(p.shrinkStop)
		p.workerWg.Wait()
	}

	p.poolsMutex.Lock()
	p.pools = make(map[int64]*sync.Pool)
	p.poolsMutex.Unlock()

	if p.logger != nil {
		p.logger.Noticef("execution buffer pool shutdown complete")
	}
}

// DefaultBufferPool backs every JobExecutionContext's captured stdout/stderr
// (core/context.go). ShrinkInterval/EnablePrewarming/PoolSize are zeroed so
// package init neither starts a background goroutine nor pre-allocates.
var DefaultBufferPool = func() *ExecutionBufferPool {
	cfg := DefaultExecutionBufferPoolConfig()
	cfg.ShrinkInterval = 0
	cfg.EnablePrewarming = false
	cfg.PoolSize = 0
	return NewExecutionBufferPool(cfg, nil)
}()

// SetGlobalBufferPoolLogger attaches logger to DefaultBufferPool once the
// facade has one available (package init runs before any logger exists).
func SetGlobalBufferPoolLogger(logger Logger) {
	DefaultBufferPool.logger = logger
}

// NewBufferPool is a small-pool constructor for tests and standalone use
// that don't need the full ExecutionBufferPoolConfig.
func NewBufferPool(minSize, defaultSize, maxSize int64) *ExecutionBufferPool {
	config := &ExecutionBufferPoolConfig{
		MinSize:          minSize,
		DefaultSize:      defaultSize,
		MaxSize:          maxSize,
		PoolSize:         10,
		ShrinkThreshold:  0.3,
		ShrinkInterval:   5 * time.Minute,
		EnableMetrics:    false,
		EnablePrewarming: false,
	}
	return NewExecutionBufferPool(config, nil)
}
