// Package logging provides the logrus-backed core.Logger implementation
// chronos uses everywhere, plus job-scoped structured logging helpers that
// fold job lifecycle events into a MetricsCollector.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netresearch/chronos/core"
)

// LogLevel mirrors the teacher's logging/structured.go enum; toLogrus maps
// it onto logrus's own (reversed) severity ordering.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) toLogrus() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// StructuredLogger is a logrus-backed structured logger. It implements
// core.Logger directly (Criticalf/Debugf/Errorf/Noticef/Warningf), grounded
// on the teacher's core/logrus_logger.go LogrusAdapter, so a StructuredLogger
// can be handed straight to chronos.New without an extra wrapping type.
type StructuredLogger struct {
	mu            sync.RWMutex
	logger        *logrus.Logger
	entry         *logrus.Entry
	correlationID string
}

var _ core.Logger = (*StructuredLogger)(nil)

// NewStructuredLogger builds a StructuredLogger writing JSON to stdout at
// InfoLevel, matching the teacher's NewStructuredLogger defaults.
func NewStructuredLogger() *StructuredLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	return &StructuredLogger{logger: l, entry: logrus.NewEntry(l)}
}

// SetLevel sets the minimum log level.
func (l *StructuredLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetLevel(level.toLogrus())
}

// Level returns the current minimum log level.
func (l *StructuredLogger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.logger.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return DebugLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.FatalLevel, logrus.PanicLevel:
		return FatalLevel
	default:
		return InfoLevel
	}
}

// SetOutput sets the output writer.
func (l *StructuredLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// SetJSONFormat switches between JSON and human-readable text formatting.
func (l *StructuredLogger) SetJSONFormat(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		l.logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// WithField returns a logger carrying an additional field.
func (l *StructuredLogger) WithField(key string, value any) *StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a logger carrying additional fields.
func (l *StructuredLogger) WithFields(fields map[string]any) *StructuredLogger {
	l.mu.RLock()
	entry := l.entry.WithFields(logrus.Fields(fields))
	logger := l.logger
	correlationID := l.correlationID
	l.mu.RUnlock()
	return &StructuredLogger{logger: logger, entry: entry, correlationID: correlationID}
}

// WithCorrelationID returns a logger tagging every entry with id.
func (l *StructuredLogger) WithCorrelationID(id string) *StructuredLogger {
	l.mu.RLock()
	entry := l.entry.WithField("correlationId", id)
	logger := l.logger
	l.mu.RUnlock()
	return &StructuredLogger{logger: logger, entry: entry, correlationID: id}
}

// Criticalf, Debugf, Errorf, Noticef and Warningf implement core.Logger.
// Criticalf logs at logrus's FatalLevel via Logf (not Fatalf), so it never
// calls os.Exit, matching the teacher's LogrusAdapter.
func (l *StructuredLogger) Criticalf(format string, args ...any) {
	l.entry.Logf(logrus.FatalLevel, format, args...)
}
func (l *StructuredLogger) Debugf(format string, args ...any)   { l.entry.Debugf(format, args...) }
func (l *StructuredLogger) Errorf(format string, args ...any)   { l.entry.Errorf(format, args...) }
func (l *StructuredLogger) Noticef(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *StructuredLogger) Warningf(format string, args ...any) { l.entry.Warnf(format, args...) }

// Infof logs a formatted message at info level.
func (l *StructuredLogger) Infof(format string, args ...any) { l.entry.Infof(format, args...) }

// Debug, Info, Warn, Error and Fatal log a plain message at the given level.
// Fatal does not call os.Exit; the caller decides how to react.
func (l *StructuredLogger) Debug(message string) { l.entry.Debug(message) }
func (l *StructuredLogger) Info(message string)  { l.entry.Info(message) }
func (l *StructuredLogger) Warn(message string)  { l.entry.Warn(message) }
func (l *StructuredLogger) Error(message string) { l.entry.Error(message) }
func (l *StructuredLogger) Fatal(message string) { l.entry.Log(logrus.FatalLevel, message) }

// DebugWithFields, InfoWithFields, WarnWithFields and ErrorWithFields log a
// message merged with one-off fields without building a child logger.
func (l *StructuredLogger) DebugWithFields(message string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(message)
}
func (l *StructuredLogger) InfoWithFields(message string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Info(message)
}
func (l *StructuredLogger) WarnWithFields(message string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Warn(message)
}
func (l *StructuredLogger) ErrorWithFields(message string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Error(message)
}

// JobLogger scopes a StructuredLogger to one job, folding lifecycle events
// into an optional MetricsCollector.
type JobLogger struct {
	*StructuredLogger
	jobKey  string
	jobName string
	metrics MetricsCollector
}

// NewJobLogger builds a logger tagged with jobKey/jobName.
func NewJobLogger(base *StructuredLogger, jobKey, jobName string) *JobLogger {
	if base == nil {
		base = NewStructuredLogger()
	}
	return &JobLogger{
		StructuredLogger: base.WithFields(map[string]any{
			"job_key":  jobKey,
			"job_name": jobName,
		}),
		jobKey:  jobKey,
		jobName: jobName,
	}
}

// SetMetricsCollector attaches metrics to record alongside logged events.
func (jl *JobLogger) SetMetricsCollector(metrics MetricsCollector) {
	jl.metrics = metrics
}

// LogStart logs job start.
func (jl *JobLogger) LogStart() {
	jl.InfoWithFields("job started", map[string]any{"event": "job_start"})
	if jl.metrics != nil {
		jl.metrics.IncrementCounter("jobs_started_total", 1)
		jl.metrics.SetGauge("jobs_running", 1)
	}
}

// LogComplete logs job completion.
func (jl *JobLogger) LogComplete(duration time.Duration, success bool) {
	fields := map[string]any{
		"event":    "job_complete",
		"duration": duration.Seconds(),
		"success":  success,
	}
	if success {
		jl.InfoWithFields("job completed successfully", fields)
		if jl.metrics != nil {
			jl.metrics.IncrementCounter("jobs_success_total", 1)
		}
	} else {
		jl.ErrorWithFields("job failed", fields)
		if jl.metrics != nil {
			jl.metrics.IncrementCounter("jobs_failed_total", 1)
		}
	}
	if jl.metrics != nil {
		jl.metrics.ObserveHistogram("job_duration_seconds", duration.Seconds())
		jl.metrics.SetGauge("jobs_running", -1)
	}
}

// LogProgress logs job progress.
func (jl *JobLogger) LogProgress(message string, percentComplete float64) {
	jl.InfoWithFields(message, map[string]any{
		"event":    "job_progress",
		"progress": percentComplete,
	})
	if jl.metrics != nil {
		jl.metrics.SetGauge("job_progress_percent", percentComplete)
	}
}

// LogError logs an error with extra context.
func (jl *JobLogger) LogError(err error, context string) {
	jl.ErrorWithFields("job error occurred", map[string]any{
		"event":   "job_error",
		"error":   err.Error(),
		"context": context,
	})
	if jl.metrics != nil {
		jl.metrics.IncrementCounter("job_errors_total", 1)
	}
}

// LogRetry logs a retry attempt.
func (jl *JobLogger) LogRetry(attempt, maxAttempts int, err error) {
	jl.WarnWithFields("retrying job execution", map[string]any{
		"event":        "job_retry",
		"attempt":      attempt,
		"max_attempts": maxAttempts,
		"error":        err.Error(),
	})
	if jl.metrics != nil {
		jl.metrics.IncrementCounter("job_retries_total", 1)
	}
}

// DefaultLogger is the package-level logger backing the Debug/Info/Warn/
// Error/Fatal convenience functions below.
var DefaultLogger = NewStructuredLogger()

// MetricsCollector is the logging package's view of metrics.Recorder,
// kept narrow so logging never imports package metrics directly.
type MetricsCollector interface {
	IncrementCounter(name string, value float64)
	SetGauge(name string, value float64)
	ObserveHistogram(name string, value float64)
}

func Debug(message string) { DefaultLogger.Debug(message) }
func Info(message string)  { DefaultLogger.Info(message) }
func Warn(message string)  { DefaultLogger.Warn(message) }
func Error(message string) { DefaultLogger.Error(message) }
func Fatal(message string) { DefaultLogger.Fatal(message) }
