// Package web serves read-only observability endpoints over a running
// Scheduler: liveness, readiness, a detailed status snapshot and the
// Prometheus exposition endpoint. It never exposes an endpoint that can
// mutate the schedule, adapted from the teacher's web/health.go checks
// but trimmed to the reporting operations this scheduler actually offers.
package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/netresearch/chronos"
)

// HealthStatus is the coarse status reported by each individual check and
// by the aggregate response.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// Check is a single named health check result.
type Check struct {
	Name        string       `json:"name"`
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked time.Time    `json:"last_checked"`
}

// StatusResponse is the body served by /status.
type StatusResponse struct {
	Status           HealthStatus     `json:"status"`
	Timestamp        time.Time        `json:"timestamp"`
	Uptime           float64          `json:"uptime_seconds"`
	SchedulerState   string           `json:"scheduler_state"`
	JobGroups        []string         `json:"job_groups"`
	TriggerGroups    []string         `json:"trigger_groups"`
	CurrentlyFiring  int              `json:"currently_firing"`
	Checks           map[string]Check `json:"checks"`
	System           SystemInfo       `json:"system"`
}

// SystemInfo mirrors the teacher's runtime snapshot.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"goroutines"`
	NumCPU       int    `json:"cpus"`
	MemoryAlloc  uint64 `json:"memory_alloc_bytes"`
	MemoryTotal  uint64 `json:"memory_total_bytes"`
	GCRuns       uint32 `json:"gc_runs"`
}

// HealthChecker evaluates a Scheduler's health and serves it over HTTP.
type HealthChecker struct {
	startTime time.Time
	scheduler *chronos.Scheduler

	mu     sync.RWMutex
	checks map[string]Check
}

// NewHealthChecker builds a checker reporting on s.
func NewHealthChecker(s *chronos.Scheduler) *HealthChecker {
	hc := &HealthChecker{
		startTime: time.Now(),
		scheduler: s,
		checks:    make(map[string]Check),
	}
	hc.performAllChecks()
	return hc
}

// RunPeriodicChecks refreshes checks on interval until stop is closed.
// Intended to be launched in its own goroutine.
func (hc *HealthChecker) RunPeriodicChecks(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			hc.performAllChecks()
		}
	}
}

func (hc *HealthChecker) performAllChecks() {
	hc.checkScheduler()
	hc.checkSystemResources()
}

func (hc *HealthChecker) checkScheduler() {
	check := Check{Name: "scheduler", LastChecked: time.Now()}

	switch hc.scheduler.State() {
	case chronos.StateStarted:
		check.Status = HealthStatusHealthy
		check.Message = "scheduler thread is running"
	case chronos.StateStandby:
		check.Status = HealthStatusDegraded
		check.Message = "scheduler is in standby, no triggers will fire"
	case chronos.StateShuttingDown, chronos.StateShutdown:
		check.Status = HealthStatusUnhealthy
		check.Message = "scheduler has shut down"
	default:
		check.Status = HealthStatusDegraded
		check.Message = "scheduler has not been started yet"
	}

	hc.mu.Lock()
	hc.checks["scheduler"] = check
	hc.mu.Unlock()
}

func (hc *HealthChecker) checkSystemResources() {
	check := Check{Name: "system", LastChecked: time.Now()}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usagePercent := float64(m.Alloc) / float64(m.Sys) * 100
	switch {
	case usagePercent > 90:
		check.Status = HealthStatusUnhealthy
		check.Message = "heap usage critical"
	case usagePercent > 75:
		check.Status = HealthStatusDegraded
		check.Message = "heap usage high"
	default:
		check.Status = HealthStatusHealthy
		check.Message = "system resources normal"
	}

	hc.mu.Lock()
	hc.checks["system"] = check
	hc.mu.Unlock()
}

// Status builds the full status snapshot.
func (hc *HealthChecker) Status() StatusResponse {
	hc.mu.RLock()
	checks := make(map[string]Check, len(hc.checks))
	for k, v := range hc.checks {
		checks[k] = v
	}
	hc.mu.RUnlock()

	overall := HealthStatusHealthy
	for _, c := range checks {
		if c.Status == HealthStatusUnhealthy {
			overall = HealthStatusUnhealthy
			break
		}
		if c.Status == HealthStatusDegraded && overall == HealthStatusHealthy {
			overall = HealthStatusDegraded
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return StatusResponse{
		Status:          overall,
		Timestamp:       time.Now(),
		Uptime:          time.Since(hc.startTime).Seconds(),
		SchedulerState:  hc.scheduler.State().String(),
		JobGroups:       hc.scheduler.GetJobGroupNames(),
		TriggerGroups:   hc.scheduler.GetTriggerGroupNames(),
		CurrentlyFiring: len(hc.scheduler.GetCurrentlyExecutingJobs()),
		Checks:          checks,
		System: SystemInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
			MemoryAlloc:  m.Alloc,
			MemoryTotal:  m.Sys,
			GCRuns:       m.NumGC,
		},
	}
}

// LivenessHandler reports whether the process is up at all.
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// ReadinessHandler reports whether the scheduler is fit to serve, returning
// 503 when unhealthy.
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := hc.Status()
		code := http.StatusOK
		if status.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// StatusHandler serves the full StatusResponse unconditionally as 200.
func (hc *HealthChecker) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(hc.Status())
	}
}
