package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	calls []string
}

func (m *recordingMetrics) RecordJobRetry(name string, attempt int, success bool) {
	m.calls = append(m.calls, name)
	_ = attempt
	_ = success
}

func TestExecuteWithRetryRunsOnceWhenMaxRetriesIsZero(t *testing.T) {
	re := NewRetryExecutor(noopLogger{})
	calls := 0
	err := re.ExecuteWithRetry("op", RetryConfig{}, func() error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	re := NewRetryExecutor(noopLogger{})
	metrics := &recordingMetrics{}
	re.SetMetricsRecorder(metrics)

	calls := 0
	err := re.ExecuteWithRetry("op", RetryConfig{MaxRetries: 3, RetryDelayMs: 1}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotEmpty(t, metrics.calls)
}

func TestExecuteWithRetryReturnsWrappedErrorAfterExhaustingRetries(t *testing.T) {
	re := NewRetryExecutor(noopLogger{})
	calls := 0
	err := re.ExecuteWithRetry("op", RetryConfig{MaxRetries: 2, RetryDelayMs: 1}, func() error {
		calls++
		return errors.New("permanent")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestCalculateDelayExponentialClampsToMax(t *testing.T) {
	re := NewRetryExecutor(noopLogger{})
	cfg := RetryConfig{RetryDelayMs: 10, RetryExponential: true, RetryMaxDelayMs: 25}

	assert.Equal(t, 10*1_000_000, int(re.calculateDelay(cfg, 0)))
	assert.Equal(t, 20*1_000_000, int(re.calculateDelay(cfg, 1)))
	assert.Equal(t, 25*1_000_000, int(re.calculateDelay(cfg, 2))) // clamped
}
