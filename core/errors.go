package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the store and scheduler thread. Wrap helpers
// below attach the offending key/name the way the teacher's WrapJobError did.
var (
	ErrObjectAlreadyExists   = errors.New("object already exists")
	ErrJobNotFound           = errors.New("job not found")
	ErrTriggerNotFound       = errors.New("trigger not found")
	ErrCalendarNotFound      = errors.New("calendar not found")
	ErrCalendarInUse         = errors.New("calendar is referenced by one or more triggers")
	ErrJobPersistence        = errors.New("job persistence error")
	ErrUnableToInterruptJob  = errors.New("unable to interrupt job")
	ErrSchedulerConfig       = errors.New("scheduler configuration error")
	ErrInvalidCronExpression = errors.New("invalid cron expression")
	ErrSchedulerNotStarted   = errors.New("scheduler has not been started")
	ErrSchedulerShutdown     = errors.New("scheduler has been shut down")
	ErrUnsupportedFieldType  = errors.New("unsupported field type for hashing")
	ErrShutdownInProgress    = errors.New("shutdown already in progress")
	ErrShutdownTimedOut      = errors.New("shutdown timed out")
)

// JobExecutionError is returned by a JobFunc to request that the scheduler
// thread take extra action beyond logging the failure: unschedule the firing
// trigger entirely, or refire the job immediately.
type JobExecutionError struct {
	Err                    error
	UnscheduleFiringTrigger bool
	RefireImmediately       bool
}

func (e *JobExecutionError) Error() string {
	if e.Err == nil {
		return "job execution error"
	}
	return e.Err.Error()
}

func (e *JobExecutionError) Unwrap() error {
	return e.Err
}

// NewJobExecutionError wraps err so the scheduler thread can read the
// unschedule/refire directives out of it via errors.As.
func NewJobExecutionError(err error, unscheduleFiringTrigger, refireImmediately bool) *JobExecutionError {
	return &JobExecutionError{
		Err:                     err,
		UnscheduleFiringTrigger: unscheduleFiringTrigger,
		RefireImmediately:       refireImmediately,
	}
}

// WrapJobError wraps a job-related error with its key for context.
func WrapJobError(op string, key Key, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s job %q: %w", op, key, err)
}

// WrapTriggerError wraps a trigger-related error with its key for context.
func WrapTriggerError(op string, key Key, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s trigger %q: %w", op, key, err)
}

// WrapCalendarError wraps a calendar-related error with its name for context.
func WrapCalendarError(op string, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s calendar %q: %w", op, name, err)
}
