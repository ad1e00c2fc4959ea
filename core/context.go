package core

import (
	"context"
	"sync"
	"time"

	"github.com/armon/circbuf"
)

// maxStreamSize bounds the circular output/error buffer captured per job
// execution (10MB), matching the teacher's original Execution sizing.
const maxStreamSize = 10 * 1024 * 1024

// JobExecutionContext is handed to a job's JobFunc and to every listener
// observing its lifecycle. It carries the fired trigger, the resolved job,
// the merged data map (spec.md Open Question OQ1: JobDataMap ∪
// Trigger.Data()), and captured output streams.
type JobExecutionContext struct {
	context.Context

	FireInstanceID   string
	ScheduledFireTime time.Time
	FireTime          time.Time
	JobDetail         *JobDetail
	Trigger           Trigger
	Calendar          Calendar
	Recovering        bool
	RefireCount       int
	MergedJobDataMap  JobDataMap

	exec *Execution

	mu     sync.Mutex
	result any
	resErr error
}

// NewJobExecutionContext builds the context for one fire of trigger against
// jd, merging jd.JobData with trigger.Data() per OQ1 (trigger data wins on
// key collision).
func NewJobExecutionContext(ctx context.Context, fireInstanceID string, jd *JobDetail, trigger Trigger, cal Calendar, scheduled, fireTime time.Time, recovering bool, refireCount int) *JobExecutionContext {
	merged := jd.JobData.Merge(trigger.Data())

	return &JobExecutionContext{
		Context:           ctx,
		FireInstanceID:    fireInstanceID,
		ScheduledFireTime: scheduled,
		FireTime:          fireTime,
		JobDetail:         jd,
		Trigger:           trigger,
		Calendar:          cal,
		Recovering:        recovering,
		RefireCount:       refireCount,
		MergedJobDataMap:  merged,
		exec:              newExecution(),
	}
}

// SetResult records the job's return value for listeners inspecting
// JobWasExecuted after execution completes.
func (jec *JobExecutionContext) SetResult(v any, err error) {
	jec.mu.Lock()
	defer jec.mu.Unlock()
	jec.result = v
	jec.resErr = err
}

// Result returns the job's recorded return value and error.
func (jec *JobExecutionContext) Result() (any, error) {
	jec.mu.Lock()
	defer jec.mu.Unlock()
	return jec.result, jec.resErr
}

// Stdout returns the captured stdout-equivalent stream for this execution.
func (jec *JobExecutionContext) Stdout() []byte {
	return jec.exec.Stdout()
}

// Stderr returns the captured stderr-equivalent stream for this execution.
func (jec *JobExecutionContext) Stderr() []byte {
	return jec.exec.Stderr()
}

// Write appends to the execution's captured stdout stream, letting a JobFunc
// use the context itself as an io.Writer for progress output.
func (jec *JobExecutionContext) Write(p []byte) (int, error) {
	return jec.exec.out.Write(p)
}

// Cleanup releases the execution's buffers back to DefaultBufferPool.
func (jec *JobExecutionContext) Cleanup() {
	jec.exec.cleanup()
}

// Execution owns a pair of bounded ring buffers capturing a single job run's
// stdout/stderr-equivalent output, adapted from the teacher's
// circbuf-backed Execution (formerly core/common.go).
type Execution struct {
	out *circbuf.Buffer
	err *circbuf.Buffer
}

func newExecution() *Execution {
	out, outErr := DefaultBufferPool.GetSized(maxStreamSize)
	if outErr != nil {
		out, _ = circbuf.NewBuffer(maxStreamSize)
	}
	errBuf, errErr := DefaultBufferPool.GetSized(maxStreamSize)
	if errErr != nil {
		errBuf, _ = circbuf.NewBuffer(maxStreamSize)
	}
	return &Execution{out: out, err: errBuf}
}

// Stdout returns a snapshot of the captured stdout stream.
func (e *Execution) Stdout() []byte {
	return e.out.Bytes()
}

// Stderr returns a snapshot of the captured stderr stream.
func (e *Execution) Stderr() []byte {
	return e.err.Bytes()
}

func (e *Execution) cleanup() {
	DefaultBufferPool.Put(e.out)
	DefaultBufferPool.Put(e.err)
}
