package core

import "time"

// MonthlyCalendar excludes specific days-of-month (1-31), every month.
type MonthlyCalendar struct {
	baseCalendar
	Location *time.Location
	Excluded [32]bool // indexed by day-of-month, 1-31
}

// NewMonthlyCalendar returns a calendar excluding the given days-of-month.
func NewMonthlyCalendar(loc *time.Location, excludedDays ...int) *MonthlyCalendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &MonthlyCalendar{baseCalendar: baseCalendar{desc: "monthly"}, Location: loc}
	for _, d := range excludedDays {
		if d >= 1 && d <= 31 {
			c.Excluded[d] = true
		}
	}
	return c
}

func (c *MonthlyCalendar) selfIncluded(instant time.Time) bool {
	return !c.Excluded[instant.In(c.Location).Day()]
}

// IsTimeIncluded implements Calendar.
func (c *MonthlyCalendar) IsTimeIncluded(instant time.Time) bool {
	return includedByChain(c, c.selfIncluded(instant), instant)
}

// GetNextIncludedTime implements Calendar.
func (c *MonthlyCalendar) GetNextIncludedTime(after time.Time) time.Time {
	return nextIncludedByChain(c, c.selfIncluded, after, func(t time.Time) time.Time {
		loc := c.Location
		local := t.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	})
}
