package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCronTriggerRejectsInvalidExpression(t *testing.T) {
	_, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "not a cron expression", nil, time.Now())
	assert.Error(t, err)
}

func TestNewCronTriggerDefaultsLocationToUTC(t *testing.T) {
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 0 * * * *", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.UTC, trig.Location)
}

func TestCronTriggerComputeFirstFireTimeEveryMinute(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 * * * * *", time.UTC, start)
	require.NoError(t, err)

	first := trig.ComputeFirstFireTime(nil)
	require.NotNil(t, first)
	assert.Equal(t, 0, first.Second())
	assert.True(t, first.After(start))
}

func TestCronTriggerAdvanceMovesForwardOneMinute(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 * * * * *", time.UTC, start)
	require.NoError(t, err)
	trig.ComputeFirstFireTime(nil)

	first := *trig.GetNextFireTime()
	trig.advance(nil)
	second := trig.GetNextFireTime()
	require.NotNil(t, second)
	assert.Equal(t, time.Minute, second.Sub(first))
}

func TestCronTriggerMayFireAgainAlwaysTrue(t *testing.T) {
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 0 * * * *", nil, time.Now())
	require.NoError(t, err)
	assert.True(t, trig.MayFireAgain())
}

func TestCronTriggerValidate(t *testing.T) {
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 0 * * * *", nil, time.Now())
	require.NoError(t, err)
	assert.NoError(t, trig.Validate())

	trig.Expression = "garbage"
	assert.Error(t, trig.Validate())
}

func TestCronTriggerUpdateAfterMisfireFiresOnceNow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 0 * * * *", time.UTC, start)
	require.NoError(t, err)
	trig.ComputeFirstFireTime(nil)

	now := start.Add(2 * time.Hour)
	trig.UpdateAfterMisfire(nil, now)

	require.NotNil(t, trig.GetNextFireTime())
	assert.True(t, trig.GetNextFireTime().Equal(now))
}

func TestCronTriggerCloneIsIndependent(t *testing.T) {
	trig, err := NewCronTrigger(NewKey("t1", ""), NewKey("job1", ""), "0 0 * * * *", time.UTC, time.Now())
	require.NoError(t, err)
	trig.ComputeFirstFireTime(nil)

	cloned := trig.clone().(*CronTrigger)
	cloned.advance(nil)

	assert.NotEqual(t, trig.GetNextFireTime(), cloned.GetNextFireTime())
}
