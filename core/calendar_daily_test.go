package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDayAcceptsHMAndHMS(t *testing.T) {
	h, m, s, err := parseTimeOfDay("9:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)
	assert.Equal(t, 0, s)

	h, m, s, err = parseTimeOfDay("9:05:30")
	require.NoError(t, err)
	assert.Equal(t, 30, s)
	_ = m

	_, _, _, err = parseTimeOfDay("garbage")
	assert.Error(t, err)
}

func TestDailyCalendarExcludesConfiguredWindow(t *testing.T) {
	cal, err := NewDailyCalendar("22:00", "23:59:59", time.UTC)
	require.NoError(t, err)

	assert.False(t, cal.IsTimeIncluded(time.Date(2026, 1, 1, 22, 30, 0, 0, time.UTC)))
	assert.True(t, cal.IsTimeIncluded(time.Date(2026, 1, 1, 21, 59, 59, 0, time.UTC)))
}

func TestDailyCalendarGetNextIncludedTimeSkipsWindow(t *testing.T) {
	cal, err := NewDailyCalendar("22:00", "23:59:59", time.UTC)
	require.NoError(t, err)

	next := cal.GetNextIncludedTime(time.Date(2026, 1, 1, 22, 30, 0, 0, time.UTC))
	assert.True(t, cal.IsTimeIncluded(next))
	assert.Equal(t, 2, next.Day())
}
