package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverridesFiltersByPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"CHRONOS_SCHEDULER_INSTANCE_NAME=from-env\n"+
			"CHRONOS_SCHEDULER_THREAD_COUNT=12\n"+
			"UNRELATED_VAR=ignored\n",
	), 0o644))

	cfg := &FileConfig{}
	require.NoError(t, applyEnvOverrides(cfg, path))

	assert.Equal(t, "from-env", cfg.Scheduler.InstanceName)
	assert.Equal(t, 12, cfg.Scheduler.ThreadCount)
}

func TestApplyEnvOverridesNoMatchingKeysIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OTHER_VAR=1\n"), 0o644))

	cfg := &FileConfig{}
	cfg.Scheduler.InstanceName = "untouched"
	require.NoError(t, applyEnvOverrides(cfg, path))
	assert.Equal(t, "untouched", cfg.Scheduler.InstanceName)
}

func TestApplyEnvOverridesMissingFile(t *testing.T) {
	cfg := &FileConfig{}
	err := applyEnvOverrides(cfg, filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
