package core

import "time"

// CronCalendar excludes every instant matching a cron expression (e.g.
// "0 0 0 * * ?" excludes exactly midnight every day).
type CronCalendar struct {
	baseCalendar
	Location *time.Location
	schedule *cronSchedule
}

// NewCronCalendar parses expr and returns a calendar excluding every
// instant it matches.
func NewCronCalendar(expr string, loc *time.Location) (*CronCalendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	cs, err := parseCronExpression(expr)
	if err != nil {
		return nil, err
	}
	return &CronCalendar{
		baseCalendar: baseCalendar{desc: "cron " + expr},
		Location:     loc,
		schedule:     cs,
	}, nil
}

func (c *CronCalendar) selfIncluded(instant time.Time) bool {
	return !c.schedule.matches(instant.In(c.Location))
}

// IsTimeIncluded implements Calendar.
func (c *CronCalendar) IsTimeIncluded(instant time.Time) bool {
	return includedByChain(c, c.selfIncluded(instant), instant)
}

// GetNextIncludedTime implements Calendar.
func (c *CronCalendar) GetNextIncludedTime(after time.Time) time.Time {
	return nextIncludedByChain(c, c.selfIncluded, after, func(t time.Time) time.Time {
		return t.Add(time.Second)
	})
}
