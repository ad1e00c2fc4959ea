package core

import "time"

// Calendar excludes instants from a trigger's fire sequence. Calendars may
// chain by intersection: a time is included iff the entire chain accepts it
// (spec.md §3).
type Calendar interface {
	// IsTimeIncluded reports whether instant is NOT excluded by this
	// calendar or any calendar it is chained to.
	IsTimeIncluded(instant time.Time) bool
	// GetNextIncludedTime returns an instant after 'after' that
	// IsTimeIncluded accepts. Day-based calendars step whole days to the
	// next local midnight; daily and cron calendars step by one second.
	GetNextIncludedTime(after time.Time) time.Time
	// BaseCalendar returns the chained base calendar, or nil.
	BaseCalendar() Calendar
	// SetBaseCalendar chains base beneath this calendar.
	SetBaseCalendar(base Calendar)
	Description() string
}

// baseCalendar implements the chaining behavior shared by every concrete
// calendar variant; variants embed it and implement their own
// selfIncluded(instant) predicate.
type baseCalendar struct {
	base Calendar
	desc string
}

func (c *baseCalendar) BaseCalendar() Calendar      { return c.base }
func (c *baseCalendar) SetBaseCalendar(b Calendar)  { c.base = b }
func (c *baseCalendar) Description() string         { return c.desc }

// includedByChain reports whether instant passes this calendar's own
// rule (selfIncluded == true) AND the full base chain.
func includedByChain(c Calendar, selfIncluded bool, instant time.Time) bool {
	if !selfIncluded {
		return false
	}
	if base := c.BaseCalendar(); base != nil {
		return base.IsTimeIncluded(instant)
	}
	return true
}

// nextIncludedByChain advances instant until both this calendar's own rule
// and the base chain accept it. isIncludedSelf is the concrete calendar's
// own predicate (not including the chain).
func nextIncludedByChain(c Calendar, isIncludedSelf func(time.Time) bool, after time.Time, step func(time.Time) time.Time) time.Time {
	candidate := step(after)
	for i := 0; i < 100000; i++ {
		if isIncludedSelf(candidate) {
			if base := c.BaseCalendar(); base != nil {
				if !base.IsTimeIncluded(candidate) {
					baseNext := base.GetNextIncludedTime(candidate)
					if baseNext.After(candidate) {
						candidate = baseNext
						continue
					}
				}
			}
			return candidate
		}
		candidate = step(candidate)
	}
	return candidate
}
