package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/logging"
)

const validDashboardConfig = `
scheduler:
  thread_count: 2
jobs:
  - name: ping
    group: default
    class: http-ping
    trigger:
      type: cron
      cron: "0 0 * * * *"
`

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestValidateExecuteValidFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(validDashboardConfig), 0o644))

	cmd := ValidateCommand{ConfigFile: configFile, Logger: logging.NewStructuredLogger()}

	out := captureStdout(t, func() {
		err := cmd.Execute(nil)
		require.NoError(t, err)
	})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	jobs, ok := decoded["Jobs"].([]any)
	require.True(t, ok)
	assert.Len(t, jobs, 1)
}

func TestValidateExecuteInvalidFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("scheduler: [\n"), 0o644))

	cmd := ValidateCommand{ConfigFile: configFile, Logger: logging.NewStructuredLogger()}
	err := cmd.Execute(nil)
	assert.Error(t, err)
}

func TestValidateExecuteMissingFile(t *testing.T) {
	cmd := ValidateCommand{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"), Logger: logging.NewStructuredLogger()}
	err := cmd.Execute(nil)
	assert.Error(t, err)
}

func TestValidateExecuteInvalidLogLevel(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(validDashboardConfig), 0o644))

	cmd := ValidateCommand{ConfigFile: configFile, LogLevel: "nonsense", Logger: logging.NewStructuredLogger()}
	err := cmd.Execute(nil)
	assert.Error(t, err)
}
