package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeJSONLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to parse JSON log line %q: %v", line, err)
	}
	return entry
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(false)
	logger.SetLevel(InfoLevel)

	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("debug message should not be logged at info level")
	}

	buf.Reset()
	logger.Info("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Error("info message should be logged")
	}

	buf.Reset()
	logger.Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Error("warning message should be logged")
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message should be logged")
	}
}

func TestStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(true)

	logger.InfoWithFields("test message", map[string]any{
		"user_id": 123,
		"action":  "login",
		"success": true,
	})

	entry := decodeJSONLine(t, buf.String())

	if entry["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %v", entry["msg"])
	}
	if entry["user_id"] != float64(123) {
		t.Errorf("expected user_id 123, got %v", entry["user_id"])
	}
	if entry["action"] != "login" {
		t.Errorf("expected action 'login', got %v", entry["action"])
	}
	if entry["success"] != true {
		t.Errorf("expected success true, got %v", entry["success"])
	}
}

func TestLoggerChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(true)

	chained := logger.
		WithField("service", "chronos").
		WithField("version", "1.0.0").
		WithFields(map[string]any{
			"environment": "production",
			"region":      "us-east-1",
		})

	chained.Info("deployment started")

	entry := decodeJSONLine(t, buf.String())
	expected := map[string]any{
		"service":     "chronos",
		"version":     "1.0.0",
		"environment": "production",
		"region":      "us-east-1",
	}
	for key, want := range expected {
		if entry[key] != want {
			t.Errorf("field %s: expected %v, got %v", key, want, entry[key])
		}
	}
}

func TestCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(true)

	correlated := logger.WithCorrelationID("req-123-456")
	correlated.Info("processing request")

	entry := decodeJSONLine(t, buf.String())
	if entry["correlationId"] != "req-123-456" {
		t.Errorf("expected correlation id 'req-123-456', got %v", entry["correlationId"])
	}
}

func TestJobLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewStructuredLogger()
	base.SetOutput(&buf)
	base.SetJSONFormat(true)
	jobLogger := NewJobLogger(base, "job-001", "backup-task")

	jobLogger.LogStart()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	entry := decodeJSONLine(t, lines[0])
	if entry["event"] != "job_start" {
		t.Error("expected job_start event")
	}
	if entry["job_key"] != "job-001" {
		t.Error("expected job_key in fields")
	}

	buf.Reset()
	jobLogger.LogProgress("processing items", 50.0)
	entry = decodeJSONLine(t, buf.String())
	if entry["event"] != "job_progress" {
		t.Error("expected job_progress event")
	}
	if entry["progress"] != float64(50) {
		t.Errorf("expected progress 50, got %v", entry["progress"])
	}

	buf.Reset()
	jobLogger.LogComplete(5*time.Second, true)
	entry = decodeJSONLine(t, buf.String())
	if entry["event"] != "job_complete" {
		t.Error("expected job_complete event")
	}
	if entry["success"] != true {
		t.Error("expected success true")
	}
	if entry["duration"] != float64(5) {
		t.Errorf("expected duration 5, got %v", entry["duration"])
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(false)

	logger.InfoWithFields("user login", map[string]any{
		"user": "admin",
		"ip":   "192.168.1.1",
	})

	output := buf.String()
	if !strings.Contains(strings.ToLower(output), "level=info") {
		t.Error("text format should contain log level")
	}
	if !strings.Contains(output, "user login") {
		t.Error("text format should contain message")
	}
	if !strings.Contains(output, "admin") {
		t.Error("text format should contain field values")
	}
}

func TestFormattedLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(false)
	logger.SetLevel(DebugLevel)

	logger.Infof("User %s logged in from %s", "alice", "192.168.1.1")
	if !strings.Contains(buf.String(), "User alice logged in from 192.168.1.1") {
		t.Error("formatted info logging not working correctly")
	}

	buf.Reset()
	logger.Debugf("Processing %d items", 42)
	if !strings.Contains(buf.String(), "Processing 42 items") {
		t.Error("formatted debug logging not working")
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{FatalLevel, "FATAL"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAllLogLevelsWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(true)
	logger.SetLevel(DebugLevel)

	testFields := map[string]any{"test_key": "test_value", "count": 42}

	tests := []struct {
		name     string
		logFunc  func()
		checkMsg string
	}{
		{"DebugWithFields", func() { logger.DebugWithFields("debug message", testFields) }, "debug message"},
		{"WarnWithFields", func() { logger.WarnWithFields("warning message", testFields) }, "warning message"},
		{"ErrorWithFields", func() { logger.ErrorWithFields("error message", testFields) }, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()
			entry := decodeJSONLine(t, buf.String())
			if entry["msg"] != tt.checkMsg {
				t.Errorf("expected message %s, got %v", tt.checkMsg, entry["msg"])
			}
			if entry["test_key"] != "test_value" {
				t.Error("expected test_key field to be present")
			}
			if entry["count"] != float64(42) {
				t.Error("expected count field to be 42")
			}
		})
	}
}

func TestCoreLoggerConformance(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(false)
	logger.SetLevel(DebugLevel)

	logger.Noticef("notice: %s", "rotated config")
	if !strings.Contains(buf.String(), "notice: rotated config") {
		t.Error("Noticef should log through to info level")
	}

	buf.Reset()
	logger.Warningf("warning: %d retries left", 2)
	if !strings.Contains(buf.String(), "warning: 2 retries left") {
		t.Error("Warningf should log through to warn level")
	}

	buf.Reset()
	logger.Criticalf("critical: %s", "disk full")
	if !strings.Contains(buf.String(), "critical: disk full") {
		t.Error("Criticalf should log the message without exiting the process")
	}
}

func TestJobLoggerWithMetrics(t *testing.T) {
	var buf bytes.Buffer
	base := NewStructuredLogger()
	base.SetOutput(&buf)
	base.SetJSONFormat(true)
	jobLogger := NewJobLogger(base, "job-002", "test-job")

	metrics := &mockMetricsCollector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
	jobLogger.SetMetricsCollector(metrics)

	jobLogger.LogStart()
	if metrics.counters["jobs_started_total"] != 1 {
		t.Errorf("expected jobs_started_total counter to be 1, got %f", metrics.counters["jobs_started_total"])
	}
	if metrics.gauges["jobs_running"] != 1 {
		t.Errorf("expected jobs_running gauge to be 1, got %f", metrics.gauges["jobs_running"])
	}

	buf.Reset()
	jobLogger.LogComplete(3*time.Second, true)
	if metrics.counters["jobs_success_total"] != 1 {
		t.Error("expected jobs_success_total counter to be incremented")
	}
	if len(metrics.histograms["job_duration_seconds"]) != 1 {
		t.Error("expected job duration to be recorded in histogram")
	}

	buf.Reset()
	jobLogger.LogComplete(2*time.Second, false)
	if metrics.counters["jobs_failed_total"] != 1 {
		t.Error("expected jobs_failed_total counter to be incremented")
	}

	buf.Reset()
	jobLogger.LogProgress("halfway done", 50.0)
	if metrics.gauges["job_progress_percent"] != 50.0 {
		t.Errorf("expected job_progress_percent gauge to be 50.0, got %f", metrics.gauges["job_progress_percent"])
	}

	buf.Reset()
	jobLogger.LogError(errors.New("test error"), "during processing")
	entry := decodeJSONLine(t, buf.String())
	if entry["event"] != "job_error" {
		t.Error("expected job_error event")
	}
	if entry["error"] != "test error" {
		t.Error("expected error message in fields")
	}
	if entry["context"] != "during processing" {
		t.Error("expected context in fields")
	}
	if metrics.counters["job_errors_total"] != 1 {
		t.Error("expected job_errors_total counter to be incremented")
	}

	buf.Reset()
	jobLogger.LogRetry(2, 5, errors.New("connection timeout"))
	entry = decodeJSONLine(t, buf.String())
	if entry["event"] != "job_retry" {
		t.Error("expected job_retry event")
	}
	if entry["attempt"] != float64(2) {
		t.Error("expected attempt number in fields")
	}
	if entry["max_attempts"] != float64(5) {
		t.Error("expected max_attempts in fields")
	}
	if metrics.counters["job_retries_total"] != 1 {
		t.Error("expected job_retries_total counter to be incremented")
	}
}

func TestJobLoggerWithoutMetrics(t *testing.T) {
	var buf bytes.Buffer
	base := NewStructuredLogger()
	base.SetOutput(&buf)
	base.SetJSONFormat(true)
	jobLogger := NewJobLogger(base, "job-003", "no-metrics-job")

	jobLogger.LogStart()
	jobLogger.LogProgress("testing", 25.0)
	jobLogger.LogComplete(1*time.Second, true)
	jobLogger.LogError(errors.New("test"), "context")
	jobLogger.LogRetry(1, 3, errors.New("retry"))

	if buf.Len() == 0 {
		t.Error("expected log output even without a metrics collector")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	DefaultLogger.SetOutput(&buf)
	DefaultLogger.SetJSONFormat(true)
	DefaultLogger.SetLevel(DebugLevel)

	tests := []struct {
		name    string
		logFunc func()
		message string
	}{
		{"PackageDebug", func() { Debug("package debug message") }, "package debug message"},
		{"PackageInfo", func() { Info("package info message") }, "package info message"},
		{"PackageWarn", func() { Warn("package warn message") }, "package warn message"},
		{"PackageError", func() { Error("package error message") }, "package error message"},
		{"PackageFatal", func() { Fatal("package fatal message") }, "package fatal message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()
			entry := decodeJSONLine(t, buf.String())
			if entry["msg"] != tt.message {
				t.Errorf("expected message '%s', got %v", tt.message, entry["msg"])
			}
		})
	}
}

func TestTextFormatWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger()
	logger.SetOutput(&buf)
	logger.SetJSONFormat(false)

	correlated := logger.WithCorrelationID("corr-123")
	correlated.Info("test message")

	if !strings.Contains(buf.String(), "corr-123") {
		t.Error("text format should include correlation id")
	}
}

func TestConcurrentLogging(t *testing.T) {
	sw := &safeWriter{buf: &bytes.Buffer{}}
	logger := NewStructuredLogger()
	logger.SetOutput(sw)
	logger.SetJSONFormat(true)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			logger.Infof("concurrent message %d", id)
		}(i)
	}
	wg.Wait()

	sw.mu.Lock()
	lines := strings.Split(strings.TrimSpace(sw.buf.String()), "\n")
	sw.mu.Unlock()

	if len(lines) != n {
		t.Errorf("expected %d log lines, got %d", n, len(lines))
	}
}

type safeWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (sw *safeWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.buf.Write(p)
}

type mockMetricsCollector struct {
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

func (m *mockMetricsCollector) IncrementCounter(name string, value float64) {
	m.counters[name] += value
}

func (m *mockMetricsCollector) SetGauge(name string, value float64) {
	m.gauges[name] = value
}

func (m *mockMetricsCollector) ObserveHistogram(name string, value float64) {
	m.histograms[name] = append(m.histograms[name], value)
}
