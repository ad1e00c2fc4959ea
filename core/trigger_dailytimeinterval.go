package core

import "time"

// DaySet is DailyTimeIntervalTrigger's set of weekdays, one bit per
// time.Weekday (Sunday is the lowest bit), matching the Quartz DaySet
// concept (spec.md §4.3).
type DaySet uint8

const (
	Sunday DaySet = 1 << iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// EveryDay is the full week.
const EveryDay = Sunday | Monday | Tuesday | Wednesday | Thursday | Friday | Saturday

func daySetOf(wd time.Weekday) DaySet {
	return DaySet(1 << uint(wd))
}

func (d DaySet) has(wd time.Weekday) bool {
	return d&daySetOf(wd) != 0
}

// DailyTimeIntervalTrigger fires every Interval units of IntervalUnit within
// a daily [StartTimeOfDay, EndTimeOfDay] window, restricted to Days.
type DailyTimeIntervalTrigger struct {
	baseTrigger

	Interval int
	Unit     IntervalUnit
	Days     DaySet

	StartHour, StartMinute, StartSecond int
	EndHour, EndMinute, EndSecond       int
	Location                           *time.Location

	timesTriggered int
}

// NewDailyTimeIntervalTrigger parses "H:MM[:SS]" window bounds and builds a
// DailyTimeIntervalTrigger. An empty endTimeOfDay means "23:59:59".
func NewDailyTimeIntervalTrigger(key, jobKey Key, start time.Time, interval int, unit IntervalUnit, days DaySet, startTimeOfDay, endTimeOfDay string, loc *time.Location) (*DailyTimeIntervalTrigger, error) {
	if loc == nil {
		loc = time.UTC
	}
	if days == 0 {
		days = EveryDay
	}
	if endTimeOfDay == "" {
		endTimeOfDay = "23:59:59"
	}
	sh, sm, ss, err := parseTimeOfDay(startTimeOfDay)
	if err != nil {
		return nil, err
	}
	eh, em, es, err := parseTimeOfDay(endTimeOfDay)
	if err != nil {
		return nil, err
	}
	return &DailyTimeIntervalTrigger{
		baseTrigger: newBaseTrigger(key, jobKey, start),
		Interval:    interval,
		Unit:        unit,
		Days:        days,
		StartHour:   sh, StartMinute: sm, StartSecond: ss,
		EndHour: eh, EndMinute: em, EndSecond: es,
		Location: loc,
	}, nil
}

func (t *DailyTimeIntervalTrigger) stepDuration() time.Duration {
	switch t.Unit {
	case IntervalMillisecond:
		return time.Duration(t.Interval) * time.Millisecond
	case IntervalSecond:
		return time.Duration(t.Interval) * time.Second
	case IntervalMinute:
		return time.Duration(t.Interval) * time.Minute
	case IntervalHour:
		return time.Duration(t.Interval) * time.Hour
	default:
		return time.Duration(t.Interval) * time.Minute
	}
}

func (t *DailyTimeIntervalTrigger) windowStart(day time.Time) time.Time {
	local := day.In(t.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), t.StartHour, t.StartMinute, t.StartSecond, 0, t.Location)
}

func (t *DailyTimeIntervalTrigger) windowEnd(day time.Time) time.Time {
	local := day.In(t.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), t.EndHour, t.EndMinute, t.EndSecond, 0, t.Location)
}

// NextFireTime implements Trigger: walks forward day by day from 'after',
// restricting to Days, then finds the first window-step strictly after
// 'after' within that day's [windowStart, windowEnd].
func (t *DailyTimeIntervalTrigger) NextFireTime(after time.Time, cal Calendar) *time.Time {
	step := t.stepDuration()
	if step <= 0 {
		return nil
	}

	cursor := after
	if cursor.Before(t.Start) {
		cursor = t.Start.Add(-time.Nanosecond)
	}

	for day := 0; day < 3660; day++ {
		dayAnchor := cursor.AddDate(0, 0, day)
		wd := dayAnchor.In(t.Location).Weekday()
		if !t.Days.has(wd) {
			continue
		}

		wStart := t.windowStart(dayAnchor)
		wEnd := t.windowEnd(dayAnchor)
		if wEnd.Before(wStart) {
			continue
		}

		candidate := wStart
		if day == 0 {
			// fast-forward to the first step strictly after 'after'.
			if after.After(wStart) || after.Equal(wStart) {
				elapsed := after.Sub(wStart)
				n := int64(elapsed/step) + 1
				candidate = wStart.Add(time.Duration(n) * step)
			}
		}

		for !candidate.After(wEnd) {
			if candidate.After(after) && (!candidate.Before(t.Start)) {
				if ft := t.clampEnd(&candidate); ft != nil {
					if cal == nil || cal.IsTimeIncluded(*ft) {
						return ft
					}
				} else {
					return nil
				}
			}
			candidate = candidate.Add(step)
		}
	}
	return nil
}

// PreviousFireTime implements Trigger.
func (t *DailyTimeIntervalTrigger) PreviousFireTime(before time.Time) *time.Time {
	step := t.stepDuration()
	if step <= 0 {
		return nil
	}
	var last *time.Time
	cursor := t.Start
	for i := 0; i < 1_000_000; i++ {
		nft := t.NextFireTime(cursor, nil)
		if nft == nil || nft.After(before) {
			break
		}
		last = nft
		cursor = *nft
	}
	return last
}

// ComputeFirstFireTime implements Trigger.
func (t *DailyTimeIntervalTrigger) ComputeFirstFireTime(cal Calendar) *time.Time {
	t.timesTriggered = 0
	ft := t.NextFireTime(t.Start.Add(-time.Nanosecond), cal)
	t.nextFireTime = ft
	return ft
}

// MayFireAgain implements Trigger: fires indefinitely unless EndTime caps it.
func (t *DailyTimeIntervalTrigger) MayFireAgain() bool {
	return true
}

// advance implements Trigger.
func (t *DailyTimeIntervalTrigger) advance(cal Calendar) {
	if t.nextFireTime == nil {
		return
	}
	t.timesTriggered++
	t.previousFireTime = t.nextFireTime
	t.nextFireTime = t.NextFireTime(*t.nextFireTime, cal)
}

// UpdateAfterMisfire implements Trigger: SMART_POLICY maps to FIRE_ONCE_NOW
// (spec.md §4.3).
func (t *DailyTimeIntervalTrigger) UpdateAfterMisfire(cal Calendar, now time.Time) {
	instr := t.Misfire
	if instr == MisfireSmartPolicy {
		instr = MisfireFireOnceNow
	}

	switch instr {
	case MisfireFireOnceNow, MisfireFireNow:
		t.nextFireTime = &now
	case MisfireDoNothing:
		t.nextFireTime = t.NextFireTime(now, cal)
	case MisfireIgnore:
		// the scheduler thread fires every missed instant in order.
	default:
		t.nextFireTime = &now
	}
}

// Validate implements Trigger.
func (t *DailyTimeIntervalTrigger) Validate() error {
	if t.Interval <= 0 {
		return WrapTriggerError("validate", t.Key, ErrSchedulerConfig)
	}
	if t.Days == 0 {
		return WrapTriggerError("validate", t.Key, ErrSchedulerConfig)
	}
	return nil
}

func (t *DailyTimeIntervalTrigger) clone() Trigger {
	cp := *t
	return &cp
}
