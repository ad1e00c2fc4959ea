package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobDataMapMergeDoesNotMutateEither(t *testing.T) {
	base := JobDataMap{"a": 1, "b": 1}
	override := JobDataMap{"b": 2, "c": 3}

	merged := base.Merge(override)

	assert.Equal(t, JobDataMap{"a": 1, "b": 1}, base)
	assert.Equal(t, JobDataMap{"b": 2, "c": 3}, override)
	assert.Equal(t, JobDataMap{"a": 1, "b": 2, "c": 3}, merged)
}

func TestJobDataMapClone(t *testing.T) {
	base := JobDataMap{"a": 1}
	clone := base.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, base["a"])
	assert.Equal(t, 2, clone["a"])
}

func TestNewJobDetailAppliesDefaults(t *testing.T) {
	jd := NewJobDetail(NewKey("job1", ""), "noop")
	assert.False(t, jd.Durable)
	assert.False(t, jd.ConcurrentExecutionDisallowed)
	assert.NotNil(t, jd.JobData)
}

func TestJobDetailHashChangesWithHashedFields(t *testing.T) {
	jd := NewJobDetail(NewKey("job1", ""), "noop")
	h1, err := jd.Hash()
	require.NoError(t, err)

	jd.Description = "changed"
	h2, err := jd.Hash()
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestJobDetailHashStableAcrossDataMapChanges(t *testing.T) {
	jd := NewJobDetail(NewKey("job1", ""), "noop")
	h1, err := jd.Hash()
	require.NoError(t, err)

	jd.JobData["anything"] = "value"
	h2, err := jd.Hash()
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}
