package core

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracer emits spans around acquire→fire→handoff. otel.Tracer returns a
// no-op implementation when no SDK is configured, so tracing costs nothing
// when disabled (SPEC_FULL.md §4.2).
var tracer = otel.Tracer("github.com/netresearch/chronos/core")

// RunState is the scheduler thread's position in the facade lifecycle
// (spec.md §4.6).
type RunState int

const (
	StateCreated RunState = iota
	StateStarting
	StateStarted
	StateStandby
	StateShuttingDown
	StateShutdown
)

// SchedulerThreadConfig mirrors spec.md §6's options record fields relevant
// to the time loop.
type SchedulerThreadConfig struct {
	IdleWaitTime     time.Duration
	BatchTimeWindow  time.Duration
	MaxBatchSize     int
	MisfireThreshold time.Duration
}

// DefaultSchedulerThreadConfig returns spec.md §4.2's defaults.
func DefaultSchedulerThreadConfig() SchedulerThreadConfig {
	return SchedulerThreadConfig{
		IdleWaitTime:     30 * time.Second,
		BatchTimeWindow:  0,
		MaxBatchSize:     1,
		MisfireThreshold: 60 * time.Second,
	}
}

// SchedulerThread implements spec.md §4.2's single long-running time loop.
type SchedulerThread struct {
	clock     Clock
	store     *JobStore
	pool      *WorkerPool
	listeners *ListenerManager
	registry  *Registry
	logger    Logger
	cfg       SchedulerThreadConfig

	mu        sync.Mutex
	cond      *sync.Cond
	state     RunState
	executors map[string]context.CancelFunc

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSchedulerThread wires the loop's collaborators.
func NewSchedulerThread(clock Clock, store *JobStore, pool *WorkerPool, listeners *ListenerManager, registry *Registry, logger Logger, cfg SchedulerThreadConfig) *SchedulerThread {
	st := &SchedulerThread{
		clock:     clock,
		store:     store,
		pool:      pool,
		listeners: listeners,
		registry:  registry,
		logger:    logger,
		cfg:       cfg,
		state:     StateCreated,
		executors: make(map[string]context.CancelFunc),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	st.cond = sync.NewCond(&st.mu)
	return st
}

// Start transitions Created/Standby -> Started and launches the loop
// goroutine (idempotent after the first call).
func (st *SchedulerThread) Start() {
	st.mu.Lock()
	first := st.state == StateCreated
	st.state = StateStarted
	st.cond.Broadcast()
	st.mu.Unlock()

	if first {
		go st.run()
	}
}

// Standby stops fetching new work while keeping worker threads alive.
func (st *SchedulerThread) Standby() {
	st.mu.Lock()
	st.state = StateStandby
	st.mu.Unlock()
}

// Shutdown stops the loop. If waitForJobsToComplete, it blocks until the
// worker pool drains; otherwise it interrupts running jobs.
func (st *SchedulerThread) Shutdown(waitForJobsToComplete bool) {
	st.mu.Lock()
	st.state = StateShuttingDown
	st.cond.Broadcast()
	st.mu.Unlock()

	close(st.stopCh)
	<-st.doneCh

	st.pool.Shutdown(waitForJobsToComplete)

	st.mu.Lock()
	st.state = StateShutdown
	st.mu.Unlock()
}

func (st *SchedulerThread) currentState() RunState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// run is the 7-step loop from spec.md §4.2.
func (st *SchedulerThread) run() {
	defer close(st.doneCh)

	for {
		select {
		case <-st.stopCh:
			return
		default:
		}

		// Step 1: standby waits on the started/shutdown condition.
		st.mu.Lock()
		for st.state == StateStandby {
			st.cond.Wait()
		}
		shuttingDown := st.state == StateShuttingDown
		st.mu.Unlock()
		if shuttingDown {
			return
		}

		// Step 2: block for a free worker slot.
		available := st.pool.BlockForAvailableThreads()
		if available <= 0 {
			continue
		}

		batchMax := st.cfg.MaxBatchSize
		if available < batchMax {
			batchMax = available
		}
		if batchMax < 1 {
			batchMax = 1
		}

		// Step 3: acquire.
		ctx, span := tracer.Start(context.Background(), "scheduler.acquire")
		now := st.clock.Now()
		batch := st.store.AcquireNextTriggers(now.Add(st.cfg.IdleWaitTime), batchMax, st.cfg.BatchTimeWindow)
		span.SetAttributes(attribute.Int("chronos.batch_size", len(batch)))
		span.End()

		if len(batch) == 0 {
			// Step 4: nothing due; wait up to idleWaitTime or until signalled.
			st.waitForSignalOrTimeout(st.cfg.IdleWaitTime)
			continue
		}

		// Step 5: sleep until the earliest trigger's fire time, bailing out
		// early if signalled by a newer, earlier trigger.
		first := batch[0].GetNextFireTime()
		wait := first.Sub(st.clock.Now())
		if wait > 2*time.Millisecond {
			signalled := st.waitForSignalOrTimeout(wait)
			if signalled {
				if earliest := st.store.GetNextFireTime(); earliest != nil && earliest.Before(*first) {
					for _, t := range batch {
						st.store.ReleaseAcquiredTrigger(t)
					}
					continue
				}
			}
		}

		// Step 6: fire and hand off to the worker pool.
		st.fireBatch(ctx, batch)
	}
}

// waitForSignalOrTimeout blocks until the store signals a mutation or d
// elapses, returning true if it was the signal that woke it.
func (st *SchedulerThread) waitForSignalOrTimeout(d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	timer := st.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-st.store.Signal():
		return true
	case <-timer.C():
		return false
	case <-st.stopCh:
		return false
	}
}

func (st *SchedulerThread) fireBatch(ctx context.Context, batch []Trigger) {
	ctx, span := tracer.Start(ctx, "scheduler.fire")
	defer span.End()

	results := st.store.TriggersFired(batch)
	for _, result := range results {
		if result.Err != nil {
			if st.listeners != nil {
				st.listeners.fireScheduler("schedulerError", func(l SchedulerListener) {
					l.SchedulerError(result.Err.Error(), result.Err)
				})
			}
			continue
		}
		st.dispatch(ctx, result)
	}
}

// dispatch builds the JobExecutionContext for a fired trigger and hands it
// to the worker pool, running the full listener delivery pipeline
// (spec.md §4.5's event-to-hook table).
func (st *SchedulerThread) dispatch(parentCtx context.Context, result TriggerFiredResult) {
	cal, _ := st.store.GetCalendar(result.Trigger.CalendarName())

	jobCtx, cancel := context.WithCancel(parentCtx)
	jec := NewJobExecutionContext(jobCtx, result.FireInstanceID, result.JobDetail, result.Trigger, cal, result.ScheduledFireTime, result.FireTime, result.Recovering, 0)

	if st.listeners != nil && st.listeners.fireTriggerFired(result.Trigger, jec) {
		if st.listeners != nil {
			st.listeners.fireTriggerMisfired(result.Trigger)
		}
		cancel()
		st.store.TriggeredJobComplete(result.FireInstanceID, nil, NoOp)
		return
	}

	jobFunc, err := st.registry.Resolve(result.JobDetail)
	if err != nil {
		cancel()
		if st.listeners != nil {
			st.listeners.fireScheduler("schedulerError", func(l SchedulerListener) {
				l.SchedulerError("resolve job class "+result.JobDetail.JobClass, err)
			})
		}
		st.store.TriggeredJobComplete(result.FireInstanceID, nil, NoOp)
		return
	}

	ok := st.pool.RunInThread(result.FireInstanceID, true, cancel, func() {
		defer jec.Cleanup()
		defer cancel()

		if st.listeners != nil {
			st.listeners.fireJobToBeExecuted(jec)
		}

		jobErr := jobFunc(jec, jec, jec.MergedJobDataMap)
		jec.SetResult(nil, jobErr)

		if st.listeners != nil {
			st.listeners.fireJobWasExecuted(jec, jobErr)
		}

		instruction := completionInstructionFor(jobErr)
		if st.listeners != nil {
			st.listeners.fireTriggerComplete(result.Trigger, jec, instruction)
		}

		st.store.TriggeredJobComplete(result.FireInstanceID, jec.MergedJobDataMap, instruction)
	})

	if !ok {
		cancel()
		st.store.TriggeredJobComplete(result.FireInstanceID, nil, NoOp)
	}
}

// completionInstructionFor maps a job's returned error to a
// CompletionInstruction per spec.md §7's JobExecutionError flags.
func completionInstructionFor(err error) CompletionInstruction {
	if err == nil {
		return NoOp
	}
	var jee *JobExecutionError
	if asJobExecutionError(err, &jee) {
		switch {
		case jee.UnscheduleFiringTrigger:
			return SetTriggerComplete
		case jee.RefireImmediately:
			return ReExecuteJob
		}
	}
	return NoOp
}

func asJobExecutionError(err error, target **JobExecutionError) bool {
	for err != nil {
		if jee, ok := err.(*JobExecutionError); ok {
			*target = jee
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

var _ trace.Tracer = tracer
