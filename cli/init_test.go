package cli

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/config"
	"github.com/netresearch/chronos/logging"
)

func discardLogger() *logging.StructuredLogger {
	l := logging.NewStructuredLogger()
	l.SetOutput(io.Discard)
	return l
}

func TestValidateCronField(t *testing.T) {
	assert.NoError(t, validateCronField("0 0 * * * *"))
	assert.Error(t, validateCronField(""))
}

func TestJobNamePattern(t *testing.T) {
	assert.True(t, jobNamePattern.MatchString("backup-job_1"))
	assert.False(t, jobNamePattern.MatchString("bad name!"))
}

func TestSaveConfigWritesYAMLAndCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	out := filepath.Join(tmpDir, "nested", "chronos.yaml")

	cmd := &InitCommand{Output: out, Logger: discardLogger()}
	cfg := &config.FileConfig{
		Scheduler: config.SchedulerConfig{
			InstanceName:     "chronos",
			InstanceID:       "auto",
			ThreadCount:      10,
			IdleWaitTime:     30 * time.Second,
			MisfireThreshold: 60 * time.Second,
			MaxBatchSize:     1,
			LogLevel:         "info",
			LogFormat:        "json",
		},
		Jobs: []config.JobConfig{
			{
				Name:    "ping",
				Class:   "http-ping",
				Trigger: config.TriggerConfig{Type: "cron", Cron: "0 0 * * * *", Misfire: "smart"},
			},
		},
	}

	require.NoError(t, cmd.saveConfig(cfg))

	loaded, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "chronos", loaded.Scheduler.InstanceName)
	require.Len(t, loaded.Jobs, 1)
	assert.Equal(t, "http-ping", loaded.Jobs[0].Class)
	assert.Equal(t, "cron", loaded.Jobs[0].Trigger.Type)
}
