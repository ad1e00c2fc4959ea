package metrics

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v4/process"
)

var (
	ProcessCPUPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_process_cpu_percent",
		Help: "CPU usage of the chronos process, percentage, can exceed 100 on multi-core",
	})

	ProcessMemoryRSSBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_process_memory_rss_bytes",
		Help: "Resident set size of the chronos process in bytes",
	})

	ProcessMemoryPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_process_memory_percent",
		Help: "Memory usage of the chronos process as a percentage of total system memory",
	})

	ProcessThreads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_process_threads",
		Help: "Number of OS threads in the chronos process",
	})

	ResourceCollectionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronos_resource_collection_errors_total",
		Help: "Total errors encountered sampling process resource usage",
	})
)

// ResourceSample is a single point-in-time reading of the scheduler
// process's own resource usage. These samples are purely observational:
// the scheduler thread never consults them when deciding what to fire.
type ResourceSample struct {
	Timestamp      time.Time
	CPUPercent     float64
	MemoryRSSBytes uint64
	MemoryPercent  float32
	Threads        int32
}

// SampleSelf reads resource usage for the current process via gopsutil.
func SampleSelf() (ResourceSample, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ResourceSample{}, err
	}

	sample := ResourceSample{Timestamp: time.Now()}

	if cpu, err := proc.CPUPercent(); err == nil {
		sample.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		sample.MemoryRSSBytes = mem.RSS
	}
	if pct, err := proc.MemoryPercent(); err == nil {
		sample.MemoryPercent = pct
	}
	if threads, err := proc.NumThreads(); err == nil {
		sample.Threads = threads
	}

	return sample, nil
}

// PublishSelf updates the package's process gauges from a sample.
func PublishSelf(sample ResourceSample) {
	ProcessCPUPercent.Set(sample.CPUPercent)
	ProcessMemoryRSSBytes.Set(float64(sample.MemoryRSSBytes))
	ProcessMemoryPercent.Set(float64(sample.MemoryPercent))
	ProcessThreads.Set(float64(sample.Threads))
}

// ResourceCollector periodically samples and publishes the scheduler
// process's own resource usage until the supplied context is cancelled.
type ResourceCollector struct {
	interval time.Duration
	logger   interface{ Warningf(string, ...any) }
}

// NewResourceCollector builds a collector sampling every interval. logger
// may be nil.
func NewResourceCollector(interval time.Duration, logger interface{ Warningf(string, ...any) }) *ResourceCollector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ResourceCollector{interval: interval, logger: logger}
}

// Run samples on a ticker until ctx is cancelled. Intended to be launched
// in its own goroutine alongside the scheduler thread.
func (rc *ResourceCollector) Run(ctx context.Context) {
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := SampleSelf()
			if err != nil {
				ResourceCollectionErrors.Inc()
				if rc.logger != nil {
					rc.logger.Warningf("resource sample failed: %v", err)
				}
				continue
			}
			PublishSelf(sample)
		}
	}
}
