package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/netresearch/chronos"
	"github.com/netresearch/chronos/logging"
)

func newTestScheduler(t *testing.T) *chronos.Scheduler {
	t.Helper()
	logger := logging.NewStructuredLogger()
	return chronos.New(chronos.DefaultOptions(), logger)
}

func TestHealthCheckerStatus(t *testing.T) {
	s := newTestScheduler(t)
	hc := NewHealthChecker(s)

	status := hc.Status()
	if status.SchedulerState != chronos.StateCreated.String() {
		t.Errorf("expected scheduler state CREATED before Start, got %s", status.SchedulerState)
	}
	if status.System.NumCPU <= 0 {
		t.Error("expected positive NumCPU")
	}
	if len(status.Checks) == 0 {
		t.Error("expected at least one check")
	}
}

func TestHealthCheckerReflectsStartedState(t *testing.T) {
	s := newTestScheduler(t)
	s.Start()
	defer s.Shutdown(false)

	hc := NewHealthChecker(s)
	status := hc.Status()
	if status.SchedulerState != chronos.StateStarted.String() {
		t.Errorf("expected STARTED, got %s", status.SchedulerState)
	}
	if status.Status != HealthStatusHealthy {
		t.Errorf("expected healthy status once started, got %s", status.Status)
	}
}

func TestLivenessHandlerAlwaysOK(t *testing.T) {
	hc := NewHealthChecker(newTestScheduler(t))
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	hc.LivenessHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadinessHandlerServesJSON(t *testing.T) {
	hc := NewHealthChecker(newTestScheduler(t))
	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	hc.ReadinessHandler()(rec, req)

	var status StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode readyz body: %v", err)
	}
	if status.Timestamp.IsZero() {
		t.Fatal("expected non-zero timestamp")
	}
}

func TestStatusHandlerAlways200(t *testing.T) {
	hc := NewHealthChecker(newTestScheduler(t))
	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	hc.StatusHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
