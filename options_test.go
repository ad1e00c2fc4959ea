package chronos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netresearch/chronos"
)

func TestDefaultOptionsMatchesDocumentedDefaults(t *testing.T) {
	opts := chronos.DefaultOptions()

	assert.Equal(t, "chronos", opts.InstanceName)
	assert.Equal(t, "auto", opts.InstanceID)
	assert.Equal(t, 10, opts.ThreadCount)
	assert.Equal(t, 5, opts.ThreadPriority)
	assert.Equal(t, time.Duration(0), opts.BatchTimeWindow)
	assert.Equal(t, 1, opts.MaxBatchSize)
	assert.Equal(t, 30*time.Second, opts.IdleWaitTime)
	assert.Equal(t, 60*time.Second, opts.MisfireThreshold)
}
