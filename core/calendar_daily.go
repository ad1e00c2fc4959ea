package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DailyCalendar excludes a fixed time-of-day window, every day, in a given
// time zone. Quartz's DailyCalendar semantics: [startTimeOfDay,
// endTimeOfDay] is the EXCLUDED range — testable property 8.
type DailyCalendar struct {
	baseCalendar
	Location  *time.Location
	StartHour, StartMinute, StartSecond int
	EndHour, EndMinute, EndSecond       int
}

// NewDailyCalendar parses "H:MM" or "H:MM:SS" start/end strings.
func NewDailyCalendar(start, end string, loc *time.Location) (*DailyCalendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	sh, sm, ss, err := parseTimeOfDay(start)
	if err != nil {
		return nil, fmt.Errorf("daily calendar start: %w", err)
	}
	eh, em, es, err := parseTimeOfDay(end)
	if err != nil {
		return nil, fmt.Errorf("daily calendar end: %w", err)
	}
	return &DailyCalendar{
		baseCalendar: baseCalendar{desc: fmt.Sprintf("daily %s-%s", start, end)},
		Location:     loc,
		StartHour:    sh, StartMinute: sm, StartSecond: ss,
		EndHour: eh, EndMinute: em, EndSecond: es,
	}, nil
}

func parseTimeOfDay(s string) (h, m, sec int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid time-of-day %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("invalid time-of-day %q: %w", s, convErr)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

func (c *DailyCalendar) selfIncluded(instant time.Time) bool {
	t := instant.In(c.Location)
	sod := t.Hour()*3600 + t.Minute()*60 + t.Second()
	start := c.StartHour*3600 + c.StartMinute*60 + c.StartSecond
	end := c.EndHour*3600 + c.EndMinute*60 + c.EndSecond
	excluded := sod >= start && sod <= end
	return !excluded
}

// IsTimeIncluded implements Calendar.
func (c *DailyCalendar) IsTimeIncluded(instant time.Time) bool {
	return includedByChain(c, c.selfIncluded(instant), instant)
}

// GetNextIncludedTime implements Calendar.
func (c *DailyCalendar) GetNextIncludedTime(after time.Time) time.Time {
	return nextIncludedByChain(c, c.selfIncluded, after, func(t time.Time) time.Time {
		return t.Add(time.Second)
	})
}
