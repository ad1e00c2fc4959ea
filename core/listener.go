package core

// JobListener observes a job's execution lifecycle.
type JobListener interface {
	Name() string
	JobToBeExecuted(jec *JobExecutionContext)
	JobWasExecuted(jec *JobExecutionContext, jobErr error)
}

// TriggerListener observes a trigger's firing lifecycle and can veto
// execution before the job runs.
type TriggerListener interface {
	Name() string
	TriggerFired(trigger Trigger, jec *JobExecutionContext)
	VetoJobExecution(trigger Trigger, jec *JobExecutionContext) bool
	TriggerMisfired(trigger Trigger)
	TriggerComplete(trigger Trigger, jec *JobExecutionContext, instruction CompletionInstruction)
}

// SchedulerListener observes facade lifecycle and store mutation events.
type SchedulerListener interface {
	Name() string
	SchedulerStarting()
	SchedulerStarted()
	SchedulerInStandbyMode()
	SchedulerShuttingdown()
	SchedulerShutdown()
	SchedulingDataCleared()
	JobScheduled(trigger Trigger)
	JobUnscheduled(key Key)
	JobAdded(jd *JobDetail)
	JobDeleted(key Key)
	JobPaused(key Key)
	JobResumed(key Key)
	TriggerPaused(key Key)
	TriggerResumed(key Key)
	SchedulerError(msg string, err error)
}

// registration pairs a listener with the matchers scoping which keys it
// receives events for. A nil/empty Matchers slice means "receive
// everything" (spec.md §4.5).
type registration[L any] struct {
	listener L
	matchers []Matcher
}

func (r registration[L]) accepts(k Key) bool {
	if len(r.matchers) == 0 {
		return true
	}
	for _, m := range r.matchers {
		if m.IsMatch(k) {
			return true
		}
	}
	return false
}

// ListenerManager holds the insertion-ordered listener registries and fans
// events out to matching listeners, isolating one listener's panic-free
// error from preventing delivery to the rest (spec.md §4.5).
type ListenerManager struct {
	logger Logger

	jobListeners     []registration[JobListener]
	triggerListeners []registration[TriggerListener]
	schedulerListeners []SchedulerListener
}

// NewListenerManager returns an empty manager that logs delivery failures
// through logger.
func NewListenerManager(logger Logger) *ListenerManager {
	return &ListenerManager{logger: logger}
}

// AddJobListener registers a JobListener scoped to matchers (or every key
// when matchers is empty).
func (lm *ListenerManager) AddJobListener(l JobListener, matchers ...Matcher) {
	lm.jobListeners = append(lm.jobListeners, registration[JobListener]{listener: l, matchers: matchers})
}

// AddTriggerListener registers a TriggerListener scoped to matchers.
func (lm *ListenerManager) AddTriggerListener(l TriggerListener, matchers ...Matcher) {
	lm.triggerListeners = append(lm.triggerListeners, registration[TriggerListener]{listener: l, matchers: matchers})
}

// AddSchedulerListener registers an unscoped SchedulerListener.
func (lm *ListenerManager) AddSchedulerListener(l SchedulerListener) {
	lm.schedulerListeners = append(lm.schedulerListeners, l)
}

// JobListeners returns listeners in registration order.
func (lm *ListenerManager) JobListeners() []JobListener {
	out := make([]JobListener, 0, len(lm.jobListeners))
	for _, r := range lm.jobListeners {
		out = append(out, r.listener)
	}
	return out
}

// TriggerListeners returns listeners in registration order.
func (lm *ListenerManager) TriggerListeners() []TriggerListener {
	out := make([]TriggerListener, 0, len(lm.triggerListeners))
	for _, r := range lm.triggerListeners {
		out = append(out, r.listener)
	}
	return out
}

// SchedulerListeners returns listeners in registration order.
func (lm *ListenerManager) SchedulerListeners() []SchedulerListener {
	return lm.schedulerListeners
}

// fireTriggerFired delivers triggerFired to every matching trigger listener
// in order, returning true if any of them vetoed execution.
func (lm *ListenerManager) fireTriggerFired(trigger Trigger, jec *JobExecutionContext) (veto bool) {
	key := trigger.TriggerKey()
	for _, r := range lm.triggerListeners {
		if !r.accepts(key) {
			continue
		}
		lm.safe("triggerFired:"+r.listener.Name(), func() { r.listener.TriggerFired(trigger, jec) })
		if lm.safeBool(r.listener, trigger, jec) {
			veto = true
		}
	}
	return veto
}

func (lm *ListenerManager) safeBool(l TriggerListener, trigger Trigger, jec *JobExecutionContext) (vetoed bool) {
	defer func() {
		if r := recover(); r != nil {
			lm.logger.Errorf("listener %s panicked in vetoJobExecution: %v", l.Name(), r)
			vetoed = false
		}
	}()
	return l.VetoJobExecution(trigger, jec)
}

// fireTriggerMisfired notifies trigger listeners scoped to key.
func (lm *ListenerManager) fireTriggerMisfired(trigger Trigger) {
	key := trigger.TriggerKey()
	for _, r := range lm.triggerListeners {
		if !r.accepts(key) {
			continue
		}
		lm.safe("triggerMisfired:"+r.listener.Name(), func() { r.listener.TriggerMisfired(trigger) })
	}
}

// fireTriggerComplete notifies trigger listeners scoped to key.
func (lm *ListenerManager) fireTriggerComplete(trigger Trigger, jec *JobExecutionContext, instruction CompletionInstruction) {
	key := trigger.TriggerKey()
	for _, r := range lm.triggerListeners {
		if !r.accepts(key) {
			continue
		}
		lm.safe("triggerComplete:"+r.listener.Name(), func() { r.listener.TriggerComplete(trigger, jec, instruction) })
	}
}

// fireJobToBeExecuted notifies job listeners scoped to the job's key.
func (lm *ListenerManager) fireJobToBeExecuted(jec *JobExecutionContext) {
	key := jec.JobDetail.Key
	for _, r := range lm.jobListeners {
		if !r.accepts(key) {
			continue
		}
		lm.safe("jobToBeExecuted:"+r.listener.Name(), func() { r.listener.JobToBeExecuted(jec) })
	}
}

// fireJobWasExecuted notifies job listeners scoped to the job's key.
func (lm *ListenerManager) fireJobWasExecuted(jec *JobExecutionContext, jobErr error) {
	key := jec.JobDetail.Key
	for _, r := range lm.jobListeners {
		if !r.accepts(key) {
			continue
		}
		lm.safe("jobWasExecuted:"+r.listener.Name(), func() { r.listener.JobWasExecuted(jec, jobErr) })
	}
}

func (lm *ListenerManager) fireScheduler(name string, fn func(SchedulerListener)) {
	for _, l := range lm.schedulerListeners {
		lm.safe(name+":"+l.Name(), func() { fn(l) })
	}
}

// NotifySchedulerStarting fires SchedulerStarting on every registered
// scheduler listener. Called by the facade before its scheduler thread
// starts, so listeners observe it strictly before NotifySchedulerStarted.
func (lm *ListenerManager) NotifySchedulerStarting() {
	lm.fireScheduler("schedulerStarting", func(l SchedulerListener) { l.SchedulerStarting() })
}

// NotifySchedulerStarted fires SchedulerStarted.
func (lm *ListenerManager) NotifySchedulerStarted() {
	lm.fireScheduler("schedulerStarted", func(l SchedulerListener) { l.SchedulerStarted() })
}

// NotifySchedulerInStandbyMode fires SchedulerInStandbyMode.
func (lm *ListenerManager) NotifySchedulerInStandbyMode() {
	lm.fireScheduler("schedulerInStandbyMode", func(l SchedulerListener) { l.SchedulerInStandbyMode() })
}

// NotifySchedulerShuttingdown fires SchedulerShuttingdown.
func (lm *ListenerManager) NotifySchedulerShuttingdown() {
	lm.fireScheduler("schedulerShuttingdown", func(l SchedulerListener) { l.SchedulerShuttingdown() })
}

// NotifySchedulerShutdown fires SchedulerShutdown.
func (lm *ListenerManager) NotifySchedulerShutdown() {
	lm.fireScheduler("schedulerShutdown", func(l SchedulerListener) { l.SchedulerShutdown() })
}

// NotifySchedulingDataCleared fires SchedulingDataCleared.
func (lm *ListenerManager) NotifySchedulingDataCleared() {
	lm.fireScheduler("schedulingDataCleared", func(l SchedulerListener) { l.SchedulingDataCleared() })
}

// NotifyJobScheduled fires JobScheduled.
func (lm *ListenerManager) NotifyJobScheduled(trigger Trigger) {
	lm.fireScheduler("jobScheduled", func(l SchedulerListener) { l.JobScheduled(trigger) })
}

// NotifyJobUnscheduled fires JobUnscheduled.
func (lm *ListenerManager) NotifyJobUnscheduled(key Key) {
	lm.fireScheduler("jobUnscheduled", func(l SchedulerListener) { l.JobUnscheduled(key) })
}

// NotifyJobAdded fires JobAdded.
func (lm *ListenerManager) NotifyJobAdded(jd *JobDetail) {
	lm.fireScheduler("jobAdded", func(l SchedulerListener) { l.JobAdded(jd) })
}

// NotifyJobDeleted fires JobDeleted.
func (lm *ListenerManager) NotifyJobDeleted(key Key) {
	lm.fireScheduler("jobDeleted", func(l SchedulerListener) { l.JobDeleted(key) })
}

// NotifyJobPaused fires JobPaused.
func (lm *ListenerManager) NotifyJobPaused(key Key) {
	lm.fireScheduler("jobPaused", func(l SchedulerListener) { l.JobPaused(key) })
}

// NotifyJobResumed fires JobResumed.
func (lm *ListenerManager) NotifyJobResumed(key Key) {
	lm.fireScheduler("jobResumed", func(l SchedulerListener) { l.JobResumed(key) })
}

// NotifyTriggerPaused fires TriggerPaused.
func (lm *ListenerManager) NotifyTriggerPaused(key Key) {
	lm.fireScheduler("triggerPaused", func(l SchedulerListener) { l.TriggerPaused(key) })
}

// NotifyTriggerResumed fires TriggerResumed.
func (lm *ListenerManager) NotifyTriggerResumed(key Key) {
	lm.fireScheduler("triggerResumed", func(l SchedulerListener) { l.TriggerResumed(key) })
}

// safe runs fn, logging (not propagating) any panic, matching spec.md
// §4.5's "exceptions in one listener are logged and do not prevent delivery
// to the next".
func (lm *ListenerManager) safe(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			lm.logger.Errorf("listener delivery %s panicked: %v", op, r)
		}
	}()
	fn()
}
