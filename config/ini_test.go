package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLegacyINIScheduler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chronos.ini")
	require.NoError(t, os.WriteFile(path, []byte(`
[scheduler]
instance_name = legacy-instance
thread_count = 7
`), 0o644))

	cfg := &FileConfig{}
	require.NoError(t, loadLegacyINI(cfg, path))

	assert.Equal(t, "legacy-instance", cfg.Scheduler.InstanceName)
	assert.Equal(t, 7, cfg.Scheduler.ThreadCount)
}

func TestLoadLegacyINIFallsBackToDefaultSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chronos.ini")
	require.NoError(t, os.WriteFile(path, []byte(`
instance_name = default-section
`), 0o644))

	cfg := &FileConfig{}
	require.NoError(t, loadLegacyINI(cfg, path))
	assert.Equal(t, "default-section", cfg.Scheduler.InstanceName)
}

func TestLoadLegacyINIMissingFile(t *testing.T) {
	cfg := &FileConfig{}
	err := loadLegacyINI(cfg, filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}
