// Package chronos is an in-process job scheduler: a job/trigger store, a
// scheduler thread that moves due triggers through acquire/fire/complete,
// a bounded worker pool, and a matcher-scoped listener pipeline. It is
// generalized from the teacher's Docker-cron engine (see DESIGN.md) into a
// Quartz-like scheduling core with pluggable job classes.
package chronos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/netresearch/chronos/core"
	"github.com/netresearch/chronos/metrics"
)

// State mirrors the facade lifecycle of spec.md §6: Created, Starting,
// Started, Standby, ShuttingDown, Shutdown.
type State int

const (
	StateCreated State = iota
	StateStarting
	StateStarted
	StateStandby
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateStarting:
		return "STARTING"
	case StateStarted:
		return "STARTED"
	case StateStandby:
		return "STANDBY"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	case StateShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// Scheduler is the public facade wiring a JobStore, SchedulerThread,
// WorkerPool, ListenerManager and Registry into the operations of
// spec.md §6. It is the single type embedding programs construct.
type Scheduler struct {
	opts      Options
	clock     core.Clock
	store     *core.JobStore
	pool      *core.WorkerPool
	listeners *core.ListenerManager
	registry  *core.Registry
	thread    *core.SchedulerThread
	logger    core.Logger
	shutdown  *core.ShutdownManager
	metrics   *metrics.Recorder
	resources *metrics.ResourceCollector

	resourcesCancel context.CancelFunc
	state           State
}

// New builds a Scheduler in the Created state. Call RegisterJob for every
// job class the caller intends to schedule, then Start.
func New(opts Options, logger core.Logger) *Scheduler {
	if opts.ThreadCount <= 0 {
		opts.ThreadCount = 10
	}
	if opts.InstanceID == "" || opts.InstanceID == "auto" {
		opts.InstanceID = uuid.NewString()
	}

	clock := core.NewRealClock()
	listeners := core.NewListenerManager(logger)
	store := core.NewJobStore(clock, listeners, logger, opts.MisfireThreshold)
	pool := core.NewWorkerPool(opts.ThreadCount, logger)
	registry := core.NewRegistry()

	thread := core.NewSchedulerThread(clock, store, pool, listeners, registry, logger, core.SchedulerThreadConfig{
		IdleWaitTime:     opts.IdleWaitTime,
		BatchTimeWindow:  opts.BatchTimeWindow,
		MaxBatchSize:     opts.MaxBatchSize,
		MisfireThreshold: opts.MisfireThreshold,
	})

	s := &Scheduler{
		opts:      opts,
		clock:     clock,
		store:     store,
		pool:      pool,
		listeners: listeners,
		registry:  registry,
		thread:    thread,
		logger:    logger,
		shutdown:  core.NewShutdownManager(logger, 30*time.Second),
		metrics:   metrics.NewRecorder(),
		resources: metrics.NewResourceCollector(15*time.Second, logger),
		state:     StateCreated,
	}

	s.shutdown.RegisterHook(core.ShutdownHook{
		Name:     "scheduler",
		Priority: 10,
		Hook: func(_ context.Context) error {
			s.Shutdown(true)
			return nil
		},
	})

	return s
}

// AddJobListener registers l, optionally scoped to matchers (no matchers
// means "every job").
func (s *Scheduler) AddJobListener(l core.JobListener, matchers ...core.Matcher) {
	s.listeners.AddJobListener(l, matchers...)
}

// AddTriggerListener registers l, optionally scoped to matchers.
func (s *Scheduler) AddTriggerListener(l core.TriggerListener, matchers ...core.Matcher) {
	s.listeners.AddTriggerListener(l, matchers...)
}

// AddSchedulerListener registers l against scheduler-wide lifecycle events.
func (s *Scheduler) AddSchedulerListener(l core.SchedulerListener) {
	s.listeners.AddSchedulerListener(l)
}

// ScheduleJob stores job and trigger together and returns the trigger's
// first fire time.
func (s *Scheduler) ScheduleJob(job *core.JobDetail, trigger core.Trigger) (*time.Time, error) {
	if err := s.store.StoreJobAndTrigger(job, trigger, false); err != nil {
		return nil, err
	}
	s.listeners.NotifyJobScheduled(trigger)
	return trigger.GetNextFireTime(), nil
}

// ScheduleTrigger attaches trigger to an already-stored job and returns its
// first fire time.
func (s *Scheduler) ScheduleTrigger(trigger core.Trigger) (*time.Time, error) {
	if err := s.store.StoreJobAndTrigger(nil, trigger, false); err != nil {
		return nil, err
	}
	s.listeners.NotifyJobScheduled(trigger)
	return trigger.GetNextFireTime(), nil
}

// AddJob stores job without any trigger. If storeNonDurableWhileAwaiting is
// false, a non-durable job with no trigger is rejected outright rather than
// silently kept around awaiting one.
func (s *Scheduler) AddJob(job *core.JobDetail, replace, storeNonDurableWhileAwaiting bool) error {
	if !job.Durable && !storeNonDurableWhileAwaiting {
		return fmt.Errorf("%w: non-durable job %s has no trigger and storeNonDurableWhileAwaitingScheduling is false", core.ErrJobPersistence, job.Key)
	}
	if err := s.store.StoreJobAndTrigger(job, nil, replace); err != nil {
		return err
	}
	s.listeners.NotifyJobAdded(job)
	return nil
}

// DeleteJob removes jobKey and all of its triggers.
func (s *Scheduler) DeleteJob(jobKey core.Key) bool {
	ok := s.store.RemoveJob(jobKey)
	if ok {
		s.listeners.NotifyJobDeleted(jobKey)
	}
	return ok
}

// DeleteJobs removes every key in keys, returning true only if all were
// removed.
func (s *Scheduler) DeleteJobs(keys []core.Key) bool {
	all := true
	for _, k := range keys {
		if s.store.RemoveJob(k) {
			s.listeners.NotifyJobDeleted(k)
		} else {
			all = false
		}
	}
	return all
}

// UnscheduleJob removes triggerKey.
func (s *Scheduler) UnscheduleJob(triggerKey core.Key) bool {
	ok := s.store.RemoveTrigger(triggerKey)
	if ok {
		s.listeners.NotifyJobUnscheduled(triggerKey)
	}
	return ok
}

// RescheduleJob replaces triggerKey with newTrigger (which must target the
// same job) and returns the new first fire time.
func (s *Scheduler) RescheduleJob(triggerKey core.Key, newTrigger core.Trigger) (*time.Time, error) {
	old, ok := s.store.GetTrigger(triggerKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrTriggerNotFound, triggerKey)
	}
	if old.JobKey() != newTrigger.JobKey() {
		return nil, fmt.Errorf("%w: reschedule must target the same job", core.ErrSchedulerConfig)
	}
	s.store.RemoveTrigger(triggerKey)
	s.listeners.NotifyJobUnscheduled(triggerKey)
	if err := s.store.StoreJobAndTrigger(nil, newTrigger, false); err != nil {
		return nil, err
	}
	s.listeners.NotifyJobScheduled(newTrigger)
	return newTrigger.GetNextFireTime(), nil
}

// TriggerJob fires jobKey immediately via a synthetic one-shot SimpleTrigger
// carrying dataOverride (nil means no override data).
func (s *Scheduler) TriggerJob(jobKey core.Key, dataOverride core.JobDataMap) error {
	if _, ok := s.store.GetJob(jobKey); !ok {
		return fmt.Errorf("%w: %s", core.ErrJobNotFound, jobKey)
	}
	triggerKey := core.NewKey(jobKey.Name+"-manual-"+uuid.NewString(), jobKey.Group)
	t := core.NewSimpleTrigger(triggerKey, jobKey, s.clock.Now(), 0, 0)
	if dataOverride != nil {
		t.FireData = dataOverride
	}
	return s.store.StoreJobAndTrigger(nil, t, false)
}

// PauseJob pauses jobKey's own triggers.
func (s *Scheduler) PauseJob(jobKey core.Key) {
	s.store.PauseJob(jobKey)
	s.listeners.NotifyJobPaused(jobKey)
}

// ResumeJob resumes jobKey's own triggers.
func (s *Scheduler) ResumeJob(jobKey core.Key) {
	s.store.ResumeJob(jobKey)
	s.listeners.NotifyJobResumed(jobKey)
}

// PauseJobs pauses every job matched by m, marking its group paused for
// jobs added to it later.
func (s *Scheduler) PauseJobs(m core.Matcher) []core.Key {
	keys := s.store.PauseJobs(m)
	for _, k := range keys {
		s.listeners.NotifyJobPaused(k)
	}
	return keys
}

// ResumeJobs resumes every job group matched by m.
func (s *Scheduler) ResumeJobs(m core.Matcher) []core.Key {
	keys := s.store.ResumeJobs(m)
	for _, k := range keys {
		s.listeners.NotifyJobResumed(k)
	}
	return keys
}

// PauseTrigger pauses triggerKey.
func (s *Scheduler) PauseTrigger(triggerKey core.Key) bool {
	ok := s.store.PauseTrigger(triggerKey)
	if ok {
		s.listeners.NotifyTriggerPaused(triggerKey)
	}
	return ok
}

// ResumeTrigger resumes triggerKey.
func (s *Scheduler) ResumeTrigger(triggerKey core.Key) bool {
	ok := s.store.ResumeTrigger(triggerKey)
	if ok {
		s.listeners.NotifyTriggerResumed(triggerKey)
	}
	return ok
}

// PauseTriggers pauses every trigger matched by m.
func (s *Scheduler) PauseTriggers(m core.Matcher) []core.Key {
	keys := s.store.PauseTriggers(m)
	for _, k := range keys {
		s.listeners.NotifyTriggerPaused(k)
	}
	return keys
}

// ResumeTriggers resumes every trigger matched by m.
func (s *Scheduler) ResumeTriggers(m core.Matcher) []core.Key {
	keys := s.store.ResumeTriggers(m)
	for _, k := range keys {
		s.listeners.NotifyTriggerResumed(k)
	}
	return keys
}

// GetCurrentlyExecutingJobs returns a snapshot of jobs mid-execution.
func (s *Scheduler) GetCurrentlyExecutingJobs() []*core.FiredTrigger {
	return s.store.CurrentlyExecuting()
}

// InterruptJob cancels every running execution of jobKey, returning true if
// at least one was interrupted.
func (s *Scheduler) InterruptJob(jobKey core.Key) bool {
	interrupted := false
	for _, ft := range s.store.CurrentlyExecuting() {
		if ft.JobSnapshot != nil && ft.JobSnapshot.Key == jobKey {
			if s.pool.Interrupt(ft.FireInstanceID) {
				interrupted = true
			}
		}
	}
	return interrupted
}

// InterruptFireInstance cancels the single running execution identified by
// fireInstanceID.
func (s *Scheduler) InterruptFireInstance(fireInstanceID string) bool {
	return s.pool.Interrupt(fireInstanceID)
}

// AddCalendar registers cal under name.
func (s *Scheduler) AddCalendar(name string, cal core.Calendar, replace, updateTriggers bool) error {
	return s.store.AddCalendar(name, cal, replace, updateTriggers)
}

// DeleteCalendar removes name, failing if any trigger still references it.
func (s *Scheduler) DeleteCalendar(name string) error {
	return s.store.DeleteCalendar(name)
}

// Start transitions the scheduler to Started and launches its scheduler
// thread goroutine. Idempotent.
func (s *Scheduler) Start() {
	s.state = StateStarting
	s.listeners.NotifySchedulerStarting()
	s.thread.Start()
	if s.resourcesCancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.resourcesCancel = cancel
		go s.resources.Run(ctx)
		go s.samplePoolLoop(ctx)
	}
	metrics.Up.Set(1)
	s.state = StateStarted
	s.listeners.NotifySchedulerStarted()
}

// samplePoolLoop periodically publishes the worker pool's active/capacity
// gauges until ctx is cancelled.
func (s *Scheduler) samplePoolLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metrics.RecordWorkerPoolState(s.pool.ActiveCount(), s.pool.Capacity())
		}
	}
}

// MetricsRecorder exposes the scheduler's metrics.Recorder so embedding
// programs can wire it into listener retry executors and job loggers.
func (s *Scheduler) MetricsRecorder() *metrics.Recorder { return s.metrics }

// StartDelayed calls Start after delay, returning immediately.
func (s *Scheduler) StartDelayed(delay time.Duration) {
	go func() {
		s.clock.Sleep(delay)
		s.Start()
	}()
}

// Standby pauses trigger acquisition without shutting anything down.
func (s *Scheduler) Standby() {
	s.thread.Standby()
	s.state = StateStandby
	s.listeners.NotifySchedulerInStandbyMode()
}

// Shutdown stops the scheduler thread and worker pool. When
// waitForJobsToComplete is true, blocks until every running job returns.
func (s *Scheduler) Shutdown(waitForJobsToComplete bool) {
	s.state = StateShuttingDown
	s.listeners.NotifySchedulerShuttingdown()
	s.thread.Shutdown(waitForJobsToComplete)
	if s.resourcesCancel != nil {
		s.resourcesCancel()
		s.resourcesCancel = nil
	}
	metrics.Up.Set(0)
	s.state = StateShutdown
	s.listeners.NotifySchedulerShutdown()
}

// Clear removes every job, trigger and calendar. The scheduler must be in
// standby or shut down before calling this.
func (s *Scheduler) Clear() {
	s.store.Clear()
	s.listeners.NotifySchedulingDataCleared()
}

// GetJobGroupNames lists every distinct job group.
func (s *Scheduler) GetJobGroupNames() []string { return s.store.JobGroupNames() }

// GetTriggerGroupNames lists every distinct trigger group.
func (s *Scheduler) GetTriggerGroupNames() []string { return s.store.TriggerGroupNames() }

// GetJobKeys lists job keys matched by m.
func (s *Scheduler) GetJobKeys(m core.Matcher) []core.Key { return s.store.JobKeys(m) }

// GetTriggerKeys lists trigger keys matched by m.
func (s *Scheduler) GetTriggerKeys(m core.Matcher) []core.Key { return s.store.TriggerKeys(m) }

// GetTriggersOfJob lists every trigger attached to jobKey.
func (s *Scheduler) GetTriggersOfJob(jobKey core.Key) []core.Trigger {
	return s.store.GetTriggersOfJob(jobKey)
}

// GetTriggerState reports triggerKey's current FireState.
func (s *Scheduler) GetTriggerState(triggerKey core.Key) (core.FireState, bool) {
	t, ok := s.store.GetTrigger(triggerKey)
	if !ok {
		return core.StateComplete, false
	}
	return t.State(), true
}

// ShutdownManager exposes the scheduler's ShutdownManager so embedding
// programs can register their own hooks (HTTP servers, metric flushers)
// alongside the scheduler's own, and call ListenForShutdown to handle
// SIGINT/SIGTERM.
func (s *Scheduler) ShutdownManager() *core.ShutdownManager { return s.shutdown }

// State reports the facade's current lifecycle state.
func (s *Scheduler) State() State { return s.state }
