package core

import (
	"fmt"
	"math"
	"time"
)

// RetryConfig controls retry behavior for a fallible operation, such as a
// listener's outbound delivery.
type RetryConfig struct {
	MaxRetries       int
	RetryDelayMs     int
	RetryExponential bool
	RetryMaxDelayMs  int
}

// MetricsRecorder receives retry telemetry. The metrics package implements
// this against Prometheus counters.
type MetricsRecorder interface {
	RecordJobRetry(name string, attempt int, success bool)
}

// RetryExecutor wraps an arbitrary operation with retry logic, used by
// listener implementations to retry flaky deliveries (SMTP, Slack, webhook).
type RetryExecutor struct {
	logger  Logger
	metrics MetricsRecorder
}

// NewRetryExecutor creates a new retry executor.
func NewRetryExecutor(logger Logger) *RetryExecutor {
	return &RetryExecutor{
		logger: logger,
	}
}

// SetMetricsRecorder sets the metrics recorder for the retry executor.
func (re *RetryExecutor) SetMetricsRecorder(metrics MetricsRecorder) {
	re.metrics = metrics
}

// ExecuteWithRetry runs fn, retrying according to config. name identifies
// the operation in logs and metrics (e.g. a listener name).
func (re *RetryExecutor) ExecuteWithRetry(name string, config RetryConfig, fn func() error) error {
	if config.MaxRetries <= 0 {
		return fn()
	}

	var lastErr error
	attempt := 0

	for attempt <= config.MaxRetries {
		err := fn()
		if err == nil {
			if attempt > 0 {
				re.logger.Noticef("%s succeeded after %d retries", name, attempt)
				if re.metrics != nil {
					re.metrics.RecordJobRetry(name, attempt, true)
				}
			}
			return nil
		}

		lastErr = err

		if attempt >= config.MaxRetries {
			break
		}

		delay := re.calculateDelay(config, attempt)

		re.logger.Warningf("%s failed (attempt %d/%d): %v. Retrying in %v",
			name, attempt+1, config.MaxRetries+1, err, delay)

		if re.metrics != nil {
			re.metrics.RecordJobRetry(name, attempt+1, false)
		}

		time.Sleep(delay)
		attempt++
	}

	re.logger.Errorf("%s failed after %d retries: %v", name, config.MaxRetries+1, lastErr)

	if re.metrics != nil {
		re.metrics.RecordJobRetry(name, config.MaxRetries+1, false)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, config.MaxRetries+1, lastErr)
}

// calculateDelay calculates the retry delay based on configuration.
func (re *RetryExecutor) calculateDelay(config RetryConfig, attempt int) time.Duration {
	delayMs := config.RetryDelayMs

	if config.RetryExponential {
		delayMs = int(float64(config.RetryDelayMs) * math.Pow(2, float64(attempt)))
		if delayMs > config.RetryMaxDelayMs {
			delayMs = config.RetryMaxDelayMs
		}
	}

	return time.Duration(delayMs) * time.Millisecond
}

// RetryStats tracks retry statistics for an operation.
type RetryStats struct {
	Name          string
	TotalAttempts int
	SuccessAfter  int
	Failed        bool
	LastError     error
}
