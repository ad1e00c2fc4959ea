package core

import "time"

// AnnualCalendar excludes specific (month, day) pairs, every year,
// regardless of which year they fall in.
type AnnualCalendar struct {
	baseCalendar
	Location *time.Location
	Excluded map[[2]int]bool // [month, day]
}

// NewAnnualCalendar returns a calendar excluding the given (month, day)
// pairs every year.
func NewAnnualCalendar(loc *time.Location, days ...[2]int) *AnnualCalendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &AnnualCalendar{baseCalendar: baseCalendar{desc: "annual"}, Location: loc, Excluded: make(map[[2]int]bool)}
	for _, d := range days {
		c.Excluded[d] = true
	}
	return c
}

func (c *AnnualCalendar) selfIncluded(instant time.Time) bool {
	t := instant.In(c.Location)
	return !c.Excluded[[2]int{int(t.Month()), t.Day()}]
}

// IsTimeIncluded implements Calendar.
func (c *AnnualCalendar) IsTimeIncluded(instant time.Time) bool {
	return includedByChain(c, c.selfIncluded(instant), instant)
}

// GetNextIncludedTime implements Calendar.
func (c *AnnualCalendar) GetNextIncludedTime(after time.Time) time.Time {
	return nextIncludedByChain(c, c.selfIncluded, after, func(t time.Time) time.Time {
		loc := c.Location
		local := t.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	})
}
