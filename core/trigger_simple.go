package core

import "time"

// RepeatIndefinitely marks a SimpleTrigger that never stops repeating.
const RepeatIndefinitely = -1

// SimpleTrigger fires once at startTime then repeats at a fixed interval,
// RepeatCount times (or forever when RepeatCount == RepeatIndefinitely).
type SimpleTrigger struct {
	baseTrigger
	RepeatCount    int
	RepeatInterval time.Duration
	timesTriggered int
}

// NewSimpleTrigger builds a SimpleTrigger with default priority/misfire
// policy applied.
func NewSimpleTrigger(key, jobKey Key, start time.Time, repeatCount int, interval time.Duration) *SimpleTrigger {
	return &SimpleTrigger{
		baseTrigger:    newBaseTrigger(key, jobKey, start),
		RepeatCount:    repeatCount,
		RepeatInterval: interval,
	}
}

// fireTimeForCount returns Start + count*RepeatInterval, or nil if count
// exceeds RepeatCount (when finite).
func (t *SimpleTrigger) fireTimeForCount(count int) *time.Time {
	if t.RepeatCount != RepeatIndefinitely && count > t.RepeatCount {
		return nil
	}
	ft := t.Start.Add(time.Duration(count) * t.RepeatInterval)
	return t.clampEnd(&ft)
}

// ComputeFirstFireTime implements Trigger.
func (t *SimpleTrigger) ComputeFirstFireTime(cal Calendar) *time.Time {
	t.timesTriggered = 0
	ft := t.fireTimeForCount(0)
	ft = adjustForCalendar(ft, cal, func(after time.Time) *time.Time {
		return t.NextFireTime(after, nil)
	})
	t.nextFireTime = ft
	return ft
}

// NextFireTime implements Trigger: the smallest Start+k*Interval strictly
// after 'after', honoring cal. With no repeat interval it returns Start while
// 'after' is not past Start.
func (t *SimpleTrigger) NextFireTime(after time.Time, cal Calendar) *time.Time {
	if t.RepeatInterval <= 0 {
		if after.Before(t.Start) || after.Equal(t.Start) {
			return t.clampEnd(&t.Start)
		}
		return nil
	}

	k := 0
	if !after.Before(t.Start) {
		k = int(after.Sub(t.Start)/t.RepeatInterval) + 1
	}

	ft := t.fireTimeForCount(k)
	if cal != nil {
		for ft != nil && !cal.IsTimeIncluded(*ft) {
			k++
			ft = t.fireTimeForCount(k)
		}
	}
	return ft
}

// PreviousFireTime implements Trigger.
func (t *SimpleTrigger) PreviousFireTime(before time.Time) *time.Time {
	if before.Before(t.Start) {
		return nil
	}
	if t.RepeatInterval <= 0 {
		return &t.Start
	}
	elapsed := before.Sub(t.Start)
	k := int(elapsed / t.RepeatInterval)
	return t.fireTimeForCount(k)
}

// MayFireAgain implements Trigger.
func (t *SimpleTrigger) MayFireAgain() bool {
	return t.RepeatCount == RepeatIndefinitely || t.timesTriggered <= t.RepeatCount
}

// advance implements Trigger: moves to the next repeat after the one that
// just fired.
func (t *SimpleTrigger) advance(cal Calendar) {
	t.timesTriggered++
	ft := t.fireTimeForCount(t.timesTriggered)
	if cal != nil {
		for ft != nil && !cal.IsTimeIncluded(*ft) {
			t.timesTriggered++
			ft = t.fireTimeForCount(t.timesTriggered)
		}
	}
	t.previousFireTime = t.nextFireTime
	t.nextFireTime = ft
}

// UpdateAfterMisfire implements Trigger per spec.md §4.3's SimpleTrigger
// SMART_POLICY table.
func (t *SimpleTrigger) UpdateAfterMisfire(cal Calendar, now time.Time) {
	instr := t.Misfire
	if instr == MisfireSmartPolicy {
		switch {
		case t.RepeatCount == RepeatIndefinitely:
			instr = MisfireRescheduleNextWithRemainingCount
		case t.timesTriggered == 0:
			instr = MisfireFireNow
		default:
			instr = MisfireRescheduleNowWithExistingRepeatCount
		}
	}

	switch instr {
	case MisfireFireNow, MisfireFireOnceNow, MisfireRescheduleNowWithExistingRepeatCount:
		t.nextFireTime = &now
	case MisfireRescheduleNextWithRemainingCount:
		nft := t.NextFireTime(now, cal)
		t.nextFireTime = nft
	case MisfireDoNothing:
		t.nextFireTime = t.NextFireTime(now, cal)
	case MisfireIgnore:
		// leave nextFireTime as-is; the scheduler thread fires every missed
		// instant in order, with no catch-up cap (see DESIGN.md OQ2).
	}
}

// Validate implements Trigger.
func (t *SimpleTrigger) Validate() error {
	if t.RepeatInterval < 0 {
		return WrapTriggerError("validate", t.Key, ErrSchedulerConfig)
	}
	return nil
}

func (t *SimpleTrigger) clone() Trigger {
	cp := *t
	return &cp
}

// adjustForCalendar shifts ft forward using next until cal includes it (or
// cal is nil).
func adjustForCalendar(ft *time.Time, cal Calendar, next func(after time.Time) *time.Time) *time.Time {
	if ft == nil || cal == nil {
		return ft
	}
	for ft != nil && !cal.IsTimeIncluded(*ft) {
		ft = next(*ft)
	}
	return ft
}
