package core

import (
	"reflect"

	"github.com/creasty/defaults"
)

// Logger is the logging sink the scheduling core writes to. Concrete
// implementations (slog/logrus-backed) live in package logging.
type Logger interface {
	Criticalf(format string, args ...any)
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
	Noticef(format string, args ...any)
	Warningf(format string, args ...any)
}

// JobDataMap carries arbitrary string-keyed data alongside a job or a
// trigger. At fire time the trigger's map overrides the job's map, and the
// merged result is what a JobFunc observes (see DESIGN.md OQ1).
type JobDataMap map[string]any

// Merge returns a new JobDataMap containing this map's entries overridden
// by override's entries. Neither receiver nor argument is mutated.
func (m JobDataMap) Merge(override JobDataMap) JobDataMap {
	merged := make(JobDataMap, len(m)+len(override))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy.
func (m JobDataMap) Clone() JobDataMap {
	return m.Merge(nil)
}

// JobDetail describes a unit of work the scheduler knows how to fire. The
// actual executable code is resolved from JobClass through a JobFactory
// registered with the facade (see registry.go) — JobDetail itself carries
// no executable state, matching the spec's "opaque job-class identifier"
// design note.
type JobDetail struct {
	Key         Key        `hash:"true"`
	JobClass    string     `hash:"true"`
	Description string     `hash:"true"`
	JobData     JobDataMap

	// Durable jobs persist in the store with no triggers attached. A
	// non-durable job is removed automatically when its last trigger goes.
	Durable bool `default:"false" hash:"true"`
	// ConcurrentExecutionDisallowed makes the store block sibling triggers
	// of this job while one firing is EXECUTING.
	ConcurrentExecutionDisallowed bool `default:"false" hash:"true"`
	// PersistJobDataAfterExecution copies the worker-observed data map back
	// into the stored JobDetail.JobData after each firing completes.
	PersistJobDataAfterExecution bool `default:"false" hash:"true"`
	// RequestsRecovery marks the job as wanting to be refired if the
	// scheduler process is interrupted mid-execution. Recorded for parity
	// with the spec; the in-memory store has nothing to recover from across
	// restarts (see SPEC_FULL.md Non-goals).
	RequestsRecovery bool `default:"false" hash:"true"`
}

// NewJobDetail builds a JobDetail with default-tag values applied.
func NewJobDetail(key Key, jobClass string) *JobDetail {
	jd := &JobDetail{Key: key, JobClass: jobClass, JobData: JobDataMap{}}
	_ = defaults.Set(jd)
	return jd
}

// Hash returns a content hash covering every `hash:"true"` field. The store
// does not call it.
func (jd *JobDetail) Hash() (string, error) {
	var hash string
	if err := GetHash(reflect.TypeOf(jd).Elem(), reflect.ValueOf(jd).Elem(), &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// clone returns a deep-enough copy for FiredTrigger job-snapshots: the
// JobData map is cloned so a worker mutating it cannot corrupt the stored
// JobDetail ahead of persistJobDataAfterExecution.
func (jd *JobDetail) clone() *JobDetail {
	cp := *jd
	cp.JobData = jd.JobData.Clone()
	return &cp
}
