package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/logging"
)

func TestApplyLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected logging.LogLevel
		wantErr  bool
	}{
		{name: "debug", input: "debug", expected: logging.DebugLevel},
		{name: "info", input: "info", expected: logging.InfoLevel},
		{name: "warn", input: "warn", expected: logging.WarnLevel},
		{name: "warning", input: "warning", expected: logging.WarnLevel},
		{name: "error", input: "error", expected: logging.ErrorLevel},
		{name: "empty is noop", input: "", expected: logging.InfoLevel},
		{name: "invalid", input: "bogus", wantErr: true},
		{name: "notice maps to info", input: "notice", expected: logging.InfoLevel},
		{name: "trace maps to debug", input: "trace", expected: logging.DebugLevel},
		{name: "fatal maps to error", input: "fatal", expected: logging.ErrorLevel},
		{name: "panic maps to error", input: "panic", expected: logging.ErrorLevel},
		{name: "critical maps to error", input: "critical", expected: logging.ErrorLevel},
		{name: "case insensitive DEBUG", input: "DEBUG", expected: logging.DebugLevel},
		{name: "typo in debug", input: "degub", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := logging.NewStructuredLogger()
			err := ApplyLogLevel(tc.input, logger)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.input != "" {
				assert.Equal(t, tc.expected, logger.Level())
			}
		})
	}
}

func TestApplyLogLevelNilLoggerIsSafe(t *testing.T) {
	err := ApplyLogLevel("", nil)
	require.NoError(t, err)

	err = ApplyLogLevel("debug", nil)
	require.NoError(t, err)
}
