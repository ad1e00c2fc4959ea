package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDailyTimeIntervalTriggerRejectsBadTimeOfDay(t *testing.T) {
	_, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), time.Now(), 30, IntervalMinute, EveryDay, "not-a-time", "", nil)
	assert.Error(t, err)
}

func TestNewDailyTimeIntervalTriggerDefaultsEndOfDayAndEveryDay(t *testing.T) {
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), time.Now(), 30, IntervalMinute, 0, "09:00", "", nil)
	require.NoError(t, err)
	assert.Equal(t, EveryDay, trig.Days)
	assert.Equal(t, 23, trig.EndHour)
	assert.Equal(t, 59, trig.EndMinute)
	assert.Equal(t, time.UTC, trig.Location)
}

func TestDailyTimeIntervalTriggerComputeFirstFireTimeAtWindowStart(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) // Thursday
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), start, 1, IntervalHour, EveryDay, "09:00", "17:00", time.UTC)
	require.NoError(t, err)

	first := trig.ComputeFirstFireTime(nil)
	require.NotNil(t, first)
	assert.Equal(t, 9, first.Hour())
	assert.Equal(t, time.January, first.Month())
	assert.Equal(t, 1, first.Day())
}

func TestDailyTimeIntervalTriggerStepsWithinWindowThenRollsToNextDay(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), start, 1, IntervalHour, EveryDay, "09:00", "10:00", time.UTC)
	require.NoError(t, err)
	trig.ComputeFirstFireTime(nil)

	trig.advance(nil)
	second := trig.GetNextFireTime()
	require.NotNil(t, second)
	assert.Equal(t, 10, second.Hour())
	assert.Equal(t, 1, second.Day())

	trig.advance(nil)
	third := trig.GetNextFireTime()
	require.NotNil(t, third)
	assert.Equal(t, 9, third.Hour())
	assert.Equal(t, 2, third.Day())
}

func TestDailyTimeIntervalTriggerRestrictsToConfiguredDays(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) // Thursday
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), start, 1, IntervalHour, Monday, "09:00", "17:00", time.UTC)
	require.NoError(t, err)

	first := trig.ComputeFirstFireTime(nil)
	require.NotNil(t, first)
	assert.Equal(t, time.Monday, first.Weekday())
}

func TestDailyTimeIntervalTriggerPreviousFireTime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), start, 1, IntervalHour, EveryDay, "09:00", "17:00", time.UTC)
	require.NoError(t, err)

	before := time.Date(2026, 1, 1, 11, 30, 0, 0, time.UTC)
	prev := trig.PreviousFireTime(before)
	require.NotNil(t, prev)
	assert.Equal(t, 11, prev.Hour())
}

func TestDailyTimeIntervalTriggerValidateRejectsBadFields(t *testing.T) {
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), time.Now(), 1, IntervalHour, EveryDay, "09:00", "17:00", time.UTC)
	require.NoError(t, err)
	assert.NoError(t, trig.Validate())

	trig.Interval = 0
	assert.Error(t, trig.Validate())

	trig.Interval = 1
	trig.Days = 0
	assert.Error(t, trig.Validate())
}

func TestDailyTimeIntervalTriggerUpdateAfterMisfireFiresOnceNow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), start, 1, IntervalHour, EveryDay, "09:00", "17:00", time.UTC)
	require.NoError(t, err)
	trig.ComputeFirstFireTime(nil)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	trig.UpdateAfterMisfire(nil, now)
	require.NotNil(t, trig.GetNextFireTime())
	assert.True(t, trig.GetNextFireTime().Equal(now))
}

func TestDailyTimeIntervalTriggerCloneIsIndependent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trig, err := NewDailyTimeIntervalTrigger(NewKey("t1", ""), NewKey("job1", ""), start, 1, IntervalHour, EveryDay, "09:00", "17:00", time.UTC)
	require.NoError(t, err)
	trig.ComputeFirstFireTime(nil)

	cloned := trig.clone().(*DailyTimeIntervalTrigger)
	cloned.advance(nil)

	assert.NotEqual(t, trig.GetNextFireTime(), cloned.GetNextFireTime())
}
