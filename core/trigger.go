package core

import "time"

// FireState is a trigger's position in the acquire/release/fire/complete
// protocol (spec.md §3).
type FireState int

const (
	StateWaiting FireState = iota
	StateAcquired
	StateExecuting
	StatePaused
	StatePausedBlocked
	StateBlocked
	StateComplete
	StateError
)

func (s FireState) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateAcquired:
		return "ACQUIRED"
	case StateExecuting:
		return "EXECUTING"
	case StatePaused:
		return "PAUSED"
	case StatePausedBlocked:
		return "PAUSED_BLOCKED"
	case StateBlocked:
		return "BLOCKED"
	case StateComplete:
		return "COMPLETE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MisfireInstruction selects how a trigger recovers when its nextFireTime
// falls more than misfireThreshold behind the scheduler's clock.
type MisfireInstruction int

const (
	MisfireSmartPolicy MisfireInstruction = iota
	MisfireFireOnceNow
	MisfireDoNothing
	MisfireIgnore
	// SimpleTrigger-specific concrete policies selected by SMART_POLICY
	// (spec.md §4.3).
	MisfireRescheduleNextWithRemainingCount
	MisfireFireNow
	MisfireRescheduleNowWithExistingRepeatCount
)

// CompletionInstruction tells the store what to do with a trigger once its
// job finishes (spec.md §4.1 triggeredJobComplete).
type CompletionInstruction int

const (
	NoOp CompletionInstruction = iota
	DeleteTrigger
	SetTriggerComplete
	SetTriggerError
	SetAllJobTriggersComplete
	SetAllJobTriggersError
	ReExecuteJob
)

// Trigger is the shared interface every trigger variant implements (simple,
// cron, calendar-interval, daily-time-interval). Field access not exposed
// here lives on the concrete variant types; the store only needs the
// algorithmic surface plus enough bookkeeping accessors to maintain its
// ordered index.
type Trigger interface {
	TriggerKey() Key
	JobKey() Key
	Description() string
	CalendarName() string
	Priority() int
	StartTime() time.Time
	EndTime() *time.Time
	MisfireInstruction() MisfireInstruction
	Data() JobDataMap

	GetNextFireTime() *time.Time
	GetPreviousFireTime() *time.Time
	State() FireState
	SetState(FireState)

	// NextFireTime computes the smallest fire instant strictly after
	// 'after' allowed by both the trigger's own algorithm and cal (nil
	// calendar means no exclusion).
	NextFireTime(after time.Time, cal Calendar) *time.Time
	// PreviousFireTime computes the largest fire instant at or before
	// 'before' the trigger would have produced.
	PreviousFireTime(before time.Time) *time.Time
	// MayFireAgain reports whether NextFireTime can ever return non-nil
	// again from the trigger's current position.
	MayFireAgain() bool
	// ComputeFirstFireTime seeds GetNextFireTime from StartTime, honoring
	// cal, and returns the computed value.
	ComputeFirstFireTime(cal Calendar) *time.Time
	// UpdateAfterMisfire applies this trigger's SMART_POLICY mapping (or
	// its explicit MisfireInstruction) when examined more than
	// misfireThreshold after GetNextFireTime().
	UpdateAfterMisfire(cal Calendar, now time.Time)
	// Validate checks the trigger's own fields for internal consistency
	// (e.g. a parseable cron expression), independent of the store.
	Validate() error

	// advance mutates GetNextFireTime/GetPreviousFireTime in place to the
	// next scheduled instant after the trigger's current nextFireTime,
	// honoring cal. Used by triggersFired.
	advance(cal Calendar)
	clone() Trigger
}

// baseTrigger holds the fields common to every trigger variant. Variant
// types embed it and implement the algorithmic methods of Trigger.
type baseTrigger struct {
	Key                 Key
	Job                 Key
	Desc                string
	Calendar            string
	Pri                 int
	Start               time.Time
	End                 *time.Time
	Misfire             MisfireInstruction
	FireData            JobDataMap
	nextFireTime        *time.Time
	previousFireTime    *time.Time
	state               FireState
}

func newBaseTrigger(key, jobKey Key, start time.Time) baseTrigger {
	return baseTrigger{
		Key:     key,
		Job:     jobKey,
		Pri:     5,
		Start:   start,
		Misfire: MisfireSmartPolicy,
		state:   StateWaiting,
	}
}

func (t *baseTrigger) TriggerKey() Key                    { return t.Key }
func (t *baseTrigger) JobKey() Key                        { return t.Job }
func (t *baseTrigger) Description() string                { return t.Desc }
func (t *baseTrigger) CalendarName() string                { return t.Calendar }
func (t *baseTrigger) Priority() int                       { return t.Pri }
func (t *baseTrigger) StartTime() time.Time                { return t.Start }
func (t *baseTrigger) EndTime() *time.Time                 { return t.End }
func (t *baseTrigger) MisfireInstruction() MisfireInstruction { return t.Misfire }
func (t *baseTrigger) Data() JobDataMap                    { return t.FireData }
func (t *baseTrigger) GetNextFireTime() *time.Time         { return t.nextFireTime }
func (t *baseTrigger) GetPreviousFireTime() *time.Time     { return t.previousFireTime }
func (t *baseTrigger) State() FireState                    { return t.state }
func (t *baseTrigger) SetState(s FireState)                { t.state = s }

// clampEnd clips a candidate fire time to t.End, returning nil if the
// candidate or End itself has passed.
func (t *baseTrigger) clampEnd(candidate *time.Time) *time.Time {
	if candidate == nil {
		return nil
	}
	if t.End != nil && candidate.After(*t.End) {
		return nil
	}
	return candidate
}
