package core

import "time"

// CronTrigger fires according to a Quartz-style six/seven-field cron
// expression, in a fixed time zone.
type CronTrigger struct {
	baseTrigger
	Expression string
	Location   *time.Location

	schedule *cronSchedule
}

// NewCronTrigger parses expr and builds a CronTrigger. loc defaults to UTC.
func NewCronTrigger(key, jobKey Key, expr string, loc *time.Location, start time.Time) (*CronTrigger, error) {
	if loc == nil {
		loc = time.UTC
	}
	cs, err := parseCronExpression(expr)
	if err != nil {
		return nil, err
	}
	return &CronTrigger{
		baseTrigger: newBaseTrigger(key, jobKey, start),
		Expression:  expr,
		Location:    loc,
		schedule:    cs,
	}, nil
}

// ComputeFirstFireTime implements Trigger.
func (t *CronTrigger) ComputeFirstFireTime(cal Calendar) *time.Time {
	ft := t.NextFireTime(t.Start.Add(-time.Second), cal)
	t.nextFireTime = ft
	return ft
}

// NextFireTime implements Trigger.
func (t *CronTrigger) NextFireTime(after time.Time, cal Calendar) *time.Time {
	candidate := t.schedule.next(after, t.Location)
	for candidate != nil {
		candidate = t.clampEnd(candidate)
		if candidate == nil {
			return nil
		}
		if cal == nil || cal.IsTimeIncluded(*candidate) {
			return candidate
		}
		candidate = t.schedule.next(*candidate, t.Location)
	}
	return nil
}

// PreviousFireTime implements Trigger. Searches backward by probing minute
// granularity down to the second within the first matching minute — cron
// triggers are not expected to need frequent historical lookups.
func (t *CronTrigger) PreviousFireTime(before time.Time) *time.Time {
	cursor := before
	for i := 0; i < 366*24*60; i++ {
		cursor = cursor.Add(-time.Minute)
		if cursor.Before(t.Start) {
			return nil
		}
		windowEnd := cursor.Add(time.Minute)
		candidate := t.schedule.next(cursor.Add(-time.Second), t.Location)
		if candidate != nil && candidate.Before(windowEnd) && !candidate.After(before) {
			return candidate
		}
	}
	return nil
}

// MayFireAgain implements Trigger: cron triggers fire indefinitely unless
// capped by EndTime.
func (t *CronTrigger) MayFireAgain() bool {
	return true
}

// advance implements Trigger.
func (t *CronTrigger) advance(cal Calendar) {
	if t.nextFireTime == nil {
		return
	}
	t.previousFireTime = t.nextFireTime
	t.nextFireTime = t.NextFireTime(*t.nextFireTime, cal)
}

// UpdateAfterMisfire implements Trigger: CronTrigger SMART_POLICY maps to
// FIRE_ONCE_NOW (spec.md §4.3).
func (t *CronTrigger) UpdateAfterMisfire(cal Calendar, now time.Time) {
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
func (t *CronTrigger) Validate() error {
	_, err := parseCronExpression(t.Expression)
	return err
}

func (t *CronTrigger) clone() Trigger {
	cp := *t
	return &cp
}
