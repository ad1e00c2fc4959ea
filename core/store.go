package core

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FiredTrigger is the record the store keeps for a trigger between
// acquisition and triggeredJobComplete — spec.md §3's "FiredTrigger record".
type FiredTrigger struct {
	FireInstanceID    string
	TriggerSnapshot   Trigger
	JobSnapshot       *JobDetail
	ScheduledFireTime time.Time
	ActualFireTime    time.Time
	Recovering        bool
}

// TriggerFiredResult is what triggersFired returns per trigger (spec.md
// §4.2 step 6).
type TriggerFiredResult struct {
	Trigger           Trigger
	JobDetail         *JobDetail
	FireInstanceID    string
	ScheduledFireTime time.Time
	FireTime          time.Time
	Recovering        bool
	Err               error
}

// JobStore is the single-mutex in-memory store described in spec.md §4.1
// and §5. All mutating operations and the sort that produces an acquisition
// batch hold the mutex for their duration; job execution itself happens
// outside it.
type JobStore struct {
	clock             Clock
	misfireThreshold  time.Duration

	mu sync.Mutex

	jobs     map[Key]*JobDetail
	triggers map[Key]Trigger

	jobToTriggers map[Key]map[Key]struct{}
	jobGroups     map[string]map[Key]struct{}
	triggerGroups map[string]map[Key]struct{}

	pausedJobGroups     map[string]struct{}
	pausedTriggerGroups map[string]struct{}

	blockedJobs map[Key]struct{}
	fired       map[string]*FiredTrigger

	calendars map[string]Calendar

	listeners *ListenerManager
	logger    Logger

	signal chan struct{}
}

// NewJobStore constructs an empty store.
func NewJobStore(clock Clock, listeners *ListenerManager, logger Logger, misfireThreshold time.Duration) *JobStore {
	if misfireThreshold <= 0 {
		misfireThreshold = 60 * time.Second
	}
	return &JobStore{
		clock:               clock,
		misfireThreshold:    misfireThreshold,
		jobs:                make(map[Key]*JobDetail),
		triggers:            make(map[Key]Trigger),
		jobToTriggers:       make(map[Key]map[Key]struct{}),
		jobGroups:           make(map[string]map[Key]struct{}),
		triggerGroups:       make(map[string]map[Key]struct{}),
		pausedJobGroups:     make(map[string]struct{}),
		pausedTriggerGroups: make(map[string]struct{}),
		blockedJobs:         make(map[Key]struct{}),
		fired:               make(map[string]*FiredTrigger),
		calendars:           make(map[string]Calendar),
		listeners:           listeners,
		logger:              logger,
		signal:              make(chan struct{}, 1),
	}
}

// Signal returns the channel the scheduler thread selects on to wake up
// early when a store mutation may have produced an earlier nextFireTime.
func (s *JobStore) Signal() <-chan struct{} {
	return s.signal
}

func (s *JobStore) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func indexAdd(idx map[string]map[Key]struct{}, group string, k Key) {
	m, ok := idx[group]
	if !ok {
		m = make(map[Key]struct{})
		idx[group] = m
	}
	m[k] = struct{}{}
}

func indexRemove(idx map[string]map[Key]struct{}, group string, k Key) {
	if m, ok := idx[group]; ok {
		delete(m, k)
		if len(m) == 0 {
			delete(idx, group)
		}
	}
}

// StoreJobAndTrigger implements spec.md §4.1's storeJobAndTrigger.
// StoreJobAndTrigger stores jd and t together. Either may be nil: a nil jd
// attaches t to a job already present in the store (ScheduleTrigger), and a
// nil t stores jd with no trigger (AddJob).
func (s *JobStore) StoreJobAndTrigger(jd *JobDetail, t Trigger, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !replace {
		if jd != nil {
			if _, exists := s.jobs[jd.Key]; exists {
				return WrapJobError("storeJobAndTrigger", jd.Key, ErrObjectAlreadyExists)
			}
		}
		if t != nil {
			if _, exists := s.triggers[t.TriggerKey()]; exists {
				return WrapTriggerError("storeJobAndTrigger", t.TriggerKey(), ErrObjectAlreadyExists)
			}
		}
	}
	if t != nil {
		if _, ok := s.jobs[t.JobKey()]; jd == nil && !ok {
			return WrapJobError("storeJobAndTrigger", t.JobKey(), ErrJobNotFound)
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}

	if jd != nil {
		s.storeJobLocked(jd)
	}
	if t != nil {
		return s.storeTriggerLocked(t)
	}
	return nil
}

func (s *JobStore) storeJobLocked(jd *JobDetail) {
	if _, exists := s.jobs[jd.Key]; !exists {
		indexAdd(s.jobGroups, jd.Key.Group, jd.Key)
	}
	s.jobs[jd.Key] = jd
	if _, ok := s.jobToTriggers[jd.Key]; !ok {
		s.jobToTriggers[jd.Key] = make(map[Key]struct{})
	}
}

func (s *JobStore) storeTriggerLocked(t Trigger) error {
	key := t.TriggerKey()
	cal := s.calendars[t.CalendarName()]

	if _, exists := s.triggers[key]; !exists {
		indexAdd(s.triggerGroups, key.Group, key)
	}

	if t.GetNextFireTime() == nil {
		t.ComputeFirstFireTime(cal)
	}

	paused := s.groupPausedLocked(key.Group, s.pausedTriggerGroups) || s.jobPausedLocked(t.JobKey())
	if paused {
		if _, blocked := s.blockedJobs[t.JobKey()]; blocked {
			t.SetState(StatePausedBlocked)
		} else {
			t.SetState(StatePaused)
		}
	} else if _, blocked := s.blockedJobs[t.JobKey()]; blocked {
		t.SetState(StateBlocked)
	} else {
		t.SetState(StateWaiting)
	}

	s.triggers[key] = t
	s.jobToTriggers[t.JobKey()][key] = struct{}{}

	s.wake()
	return nil
}

func (s *JobStore) groupPausedLocked(group string, set map[string]struct{}) bool {
	_, ok := set[group]
	return ok
}

func (s *JobStore) jobPausedLocked(jobKey Key) bool {
	jd, ok := s.jobs[jobKey]
	if !ok {
		return false
	}
	_, ok = s.pausedJobGroups[jd.Key.Group]
	return ok
}

// RemoveJob implements spec.md §4.1's removeJob, including the "non-durable
// jobs removed when their last trigger goes" invariant.
func (s *JobStore) RemoveJob(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	jd, ok := s.jobs[key]
	if !ok {
		return false
	}
	for tk := range s.jobToTriggers[key] {
		s.removeTriggerLocked(tk)
	}
	delete(s.jobToTriggers, key)
	delete(s.jobs, key)
	indexRemove(s.jobGroups, jd.Key.Group, key)
	return true
}

// RemoveTrigger implements spec.md §4.1's removeTrigger.
func (s *JobStore) RemoveTrigger(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeTriggerLocked(key)
}

func (s *JobStore) removeTriggerLocked(key Key) bool {
	t, ok := s.triggers[key]
	if !ok {
		return false
	}
	jobKey := t.JobKey()
	delete(s.triggers, key)
	indexRemove(s.triggerGroups, key.Group, key)
	if siblings, ok := s.jobToTriggers[jobKey]; ok {
		delete(siblings, key)
		if len(siblings) == 0 {
			if jd, ok := s.jobs[jobKey]; ok && !jd.Durable {
				delete(s.jobs, jobKey)
				delete(s.jobToTriggers, jobKey)
				indexRemove(s.jobGroups, jd.Key.Group, jobKey)
			}
		}
	}
	return true
}

// AcquireNextTriggers implements spec.md §4.1's acquireNextTriggers,
// including the batch-window rule.
func (s *JobStore) AcquireNextTriggers(noLaterThan time.Time, maxCount int, timeWindow time.Duration) []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := noLaterThan.Add(timeWindow)

	candidates := make([]Trigger, 0)
	for _, t := range s.triggers {
		if t.State() != StateWaiting {
			continue
		}
		nft := t.GetNextFireTime()
		if nft == nil || nft.After(cutoff) {
			continue
		}
		if _, blocked := s.blockedJobs[t.JobKey()]; blocked {
			continue
		}
		candidates = append(candidates, t)
	}

	sort.Slice(candidates, func(i, j int) bool { return triggerLess(candidates[i], candidates[j]) })

	if len(candidates) == 0 {
		return nil
	}

	batchEnd := candidates[0].GetNextFireTime().Add(timeWindow)
	out := make([]Trigger, 0, maxCount)
	for _, t := range candidates {
		if len(out) >= maxCount {
			break
		}
		if t.GetNextFireTime().After(batchEnd) {
			break
		}
		t.SetState(StateAcquired)
		out = append(out, t)
	}
	return out
}

// triggerLess orders by (nextFireTime asc, priority desc, key asc) per
// spec.md §4.1's tie-break rule.
func triggerLess(a, b Trigger) bool {
	at, bt := a.GetNextFireTime(), b.GetNextFireTime()
	if !at.Equal(*bt) {
		return at.Before(*bt)
	}
	if a.Priority() != b.Priority() {
		return a.Priority() > b.Priority()
	}
	return a.TriggerKey().Less(b.TriggerKey())
}

// ReleaseAcquiredTrigger implements spec.md §4.1's releaseAcquiredTrigger.
func (s *JobStore) ReleaseAcquiredTrigger(t Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.triggers[t.TriggerKey()]; ok && cur.State() == StateAcquired {
		cur.SetState(StateWaiting)
	}
}

// TriggersFired implements spec.md §4.1's triggersFired: advances each
// trigger, applies misfire recovery, records a FiredTrigger, and applies the
// concurrent-execution-disallowed blocking rule.
func (s *JobStore) TriggersFired(triggers []Trigger) []TriggerFiredResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	results := make([]TriggerFiredResult, 0, len(triggers))

	for _, t := range triggers {
		cur, ok := s.triggers[t.TriggerKey()]
		if !ok || cur.State() != StateAcquired {
			continue
		}

		jd, ok := s.jobs[t.JobKey()]
		if !ok {
			s.removeTriggerLocked(t.TriggerKey())
			results = append(results, TriggerFiredResult{Trigger: t, Err: WrapJobError("triggersFired", t.JobKey(), ErrJobNotFound)})
			continue
		}

		cal := s.calendars[t.CalendarName()]
		scheduled := *cur.GetNextFireTime()

		misfired := now.Sub(scheduled) > s.misfireThreshold
		switch {
		case misfired && cur.MisfireInstruction() == MisfireIgnore:
			// IGNORE_MISFIRE_POLICY: fire every missed instant in order, so
			// advance exactly as if it had not misfired (spec.md §4.3/§9 OQ2).
			cur.advance(cal)
		case misfired:
			cur.UpdateAfterMisfire(cal, now)
			if s.listeners != nil {
				s.listeners.fireTriggerMisfired(cur)
			}
			if cur.GetNextFireTime() == nil {
				cur.SetState(StateComplete)
				continue
			}
		default:
			cur.advance(cal)
		}

		fireInstanceID := uuid.NewString()
		jobSnapshot := jd.clone()

		if jd.ConcurrentExecutionDisallowed {
			s.blockedJobs[jd.Key] = struct{}{}
			for sibling := range s.jobToTriggers[jd.Key] {
				if sibling == t.TriggerKey() {
					continue
				}
				if st, ok := s.triggers[sibling]; ok && (st.State() == StateWaiting || st.State() == StateAcquired) {
					st.SetState(StateBlocked)
				}
			}
		}

		if cur.GetNextFireTime() == nil && !jd.ConcurrentExecutionDisallowed {
			cur.SetState(StateComplete)
		} else {
			cur.SetState(StateExecuting)
		}

		s.fired[fireInstanceID] = &FiredTrigger{
			FireInstanceID:    fireInstanceID,
			TriggerSnapshot:   cur,
			JobSnapshot:       jobSnapshot,
			ScheduledFireTime: scheduled,
			ActualFireTime:    now,
		}

		results = append(results, TriggerFiredResult{
			Trigger:           cur,
			JobDetail:         jobSnapshot,
			FireInstanceID:    fireInstanceID,
			ScheduledFireTime: scheduled,
			FireTime:          now,
		})
	}

	return results
}

// TriggeredJobComplete implements spec.md §4.1's triggeredJobComplete.
func (s *JobStore) TriggeredJobComplete(fireInstanceID string, observedData JobDataMap, instruction CompletionInstruction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ft, ok := s.fired[fireInstanceID]
	if !ok {
		return
	}
	delete(s.fired, fireInstanceID)

	jobKey := ft.JobSnapshot.Key
	if jd, ok := s.jobs[jobKey]; ok {
		if jd.PersistJobDataAfterExecution && observedData != nil {
			jd.JobData = observedData.Clone()
		}
		if jd.ConcurrentExecutionDisallowed {
			delete(s.blockedJobs, jobKey)
			for sibling := range s.jobToTriggers[jobKey] {
				if st, ok := s.triggers[sibling]; ok {
					switch st.State() {
					case StateBlocked:
						st.SetState(StateWaiting)
					case StatePausedBlocked:
						st.SetState(StatePaused)
					}
				}
			}
		}
	}

	triggerKey := ft.TriggerSnapshot.TriggerKey()
	cur, exists := s.triggers[triggerKey]

	switch instruction {
	case DeleteTrigger:
		s.removeTriggerLocked(triggerKey)
	case SetTriggerComplete:
		if exists {
			cur.SetState(StateComplete)
		}
	case SetTriggerError:
		if exists {
			cur.SetState(StateError)
		}
	case SetAllJobTriggersComplete:
		for sibling := range s.jobToTriggers[jobKey] {
			if st, ok := s.triggers[sibling]; ok {
				st.SetState(StateComplete)
			}
		}
	case SetAllJobTriggersError:
		for sibling := range s.jobToTriggers[jobKey] {
			if st, ok := s.triggers[sibling]; ok {
				st.SetState(StateError)
			}
		}
	case ReExecuteJob:
		if exists {
			now := s.clock.Now()
			cur.UpdateAfterMisfire(s.calendars[cur.CalendarName()], now)
			cur.SetState(StateWaiting)
		}
	case NoOp:
		if exists && cur.State() == StateExecuting {
			if cur.GetNextFireTime() == nil {
				cur.SetState(StateComplete)
			} else {
				cur.SetState(StateWaiting)
			}
		}
	}

	s.wake()
}

// PauseTrigger transitions WAITING/BLOCKED -> PAUSED/PAUSED_BLOCKED.
func (s *JobStore) PauseTrigger(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	if !ok {
		return false
	}
	switch t.State() {
	case StateWaiting:
		t.SetState(StatePaused)
	case StateBlocked:
		t.SetState(StatePausedBlocked)
	}
	return true
}

// ResumeTrigger transitions PAUSED/PAUSED_BLOCKED back to WAITING/BLOCKED.
func (s *JobStore) ResumeTrigger(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	if !ok {
		return false
	}
	switch t.State() {
	case StatePaused:
		t.SetState(StateWaiting)
	case StatePausedBlocked:
		t.SetState(StateBlocked)
	default:
		return true
	}
	s.wake()
	return true
}

// PauseTriggers pauses every WAITING/BLOCKED trigger matching m.
func (s *JobStore) PauseTriggers(m Matcher) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected []Key
	for k, t := range s.triggers {
		if !m.IsMatch(k) {
			continue
		}
		switch t.State() {
		case StateWaiting:
			t.SetState(StatePaused)
			affected = append(affected, k)
		case StateBlocked:
			t.SetState(StatePausedBlocked)
			affected = append(affected, k)
		}
	}
	return affected
}

// ResumeTriggers resumes every matching paused trigger.
func (s *JobStore) ResumeTriggers(m Matcher) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected []Key
	for k, t := range s.triggers {
		if !m.IsMatch(k) {
			continue
		}
		switch t.State() {
		case StatePaused:
			t.SetState(StateWaiting)
			affected = append(affected, k)
		case StatePausedBlocked:
			t.SetState(StateBlocked)
			affected = append(affected, k)
		}
	}
	if len(affected) > 0 {
		s.wake()
	}
	return affected
}

// PauseJob pauses every current trigger of jobKey. The job itself is not
// recorded as paused; triggers added to it later start unpaused.
func (s *JobStore) PauseJob(jobKey Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tk := range s.jobToTriggers[jobKey] {
		if t, ok := s.triggers[tk]; ok {
			switch t.State() {
			case StateWaiting:
				t.SetState(StatePaused)
			case StateBlocked:
				t.SetState(StatePausedBlocked)
			}
		}
	}
}

// ResumeJob resumes jobKey's own triggers without touching any paused
// group membership (mirrors PauseJob's per-job, non-durable scope).
func (s *JobStore) ResumeJob(jobKey Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resumed := false
	for tk := range s.jobToTriggers[jobKey] {
		if t, ok := s.triggers[tk]; ok {
			switch t.State() {
			case StatePaused:
				t.SetState(StateWaiting)
				resumed = true
			case StatePausedBlocked:
				t.SetState(StateBlocked)
			}
		}
	}
	if resumed {
		s.wake()
	}
}

// PauseJobs pauses every job group matched by m and all of its triggers.
func (s *JobStore) PauseJobs(m Matcher) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var groups []Key
	for k := range s.jobs {
		if !m.IsMatch(k) {
			continue
		}
		s.pausedJobGroups[k.Group] = struct{}{}
		groups = append(groups, k)
		for tk := range s.jobToTriggers[k] {
			if t, ok := s.triggers[tk]; ok {
				switch t.State() {
				case StateWaiting:
					t.SetState(StatePaused)
				case StateBlocked:
					t.SetState(StatePausedBlocked)
				}
			}
		}
	}
	return groups
}

// ResumeJobs resumes every job group matched by m.
func (s *JobStore) ResumeJobs(m Matcher) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var groups []Key
	for k := range s.jobs {
		if !m.IsMatch(k) {
			continue
		}
		delete(s.pausedJobGroups, k.Group)
		groups = append(groups, k)
		for tk := range s.jobToTriggers[k] {
			if t, ok := s.triggers[tk]; ok {
				switch t.State() {
				case StatePaused:
					t.SetState(StateWaiting)
				case StatePausedBlocked:
					t.SetState(StateBlocked)
				}
			}
		}
	}
	if len(groups) > 0 {
		s.wake()
	}
	return groups
}

// GetNextFireTime returns the least nextFireTime among WAITING triggers, or
// nil if none are scheduled.
func (s *JobStore) GetNextFireTime() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	var earliest *time.Time
	for _, t := range s.triggers {
		if t.State() != StateWaiting {
			continue
		}
		nft := t.GetNextFireTime()
		if nft == nil {
			continue
		}
		if earliest == nil || nft.Before(*earliest) {
			earliest = nft
		}
	}
	return earliest
}

// GetJob returns the stored JobDetail for key, if any.
func (s *JobStore) GetJob(key Key) (*JobDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jd, ok := s.jobs[key]
	return jd, ok
}

// GetTrigger returns the stored Trigger for key, if any.
func (s *JobStore) GetTrigger(key Key) (Trigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	return t, ok
}

// GetTriggersOfJob returns every trigger keyed to jobKey.
func (s *JobStore) GetTriggersOfJob(jobKey Key) []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Trigger, 0, len(s.jobToTriggers[jobKey]))
	for tk := range s.jobToTriggers[jobKey] {
		out = append(out, s.triggers[tk])
	}
	return out
}

// JobKeys returns every stored job key matched by m.
func (s *JobStore) JobKeys(m Matcher) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Key
	for k := range s.jobs {
		if m.IsMatch(k) {
			out = append(out, k)
		}
	}
	return out
}

// TriggerKeys returns every stored trigger key matched by m.
func (s *JobStore) TriggerKeys(m Matcher) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Key
	for k := range s.triggers {
		if m.IsMatch(k) {
			out = append(out, k)
		}
	}
	return out
}

// JobGroupNames returns every group name with at least one job.
func (s *JobStore) JobGroupNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.jobGroups))
	for g := range s.jobGroups {
		out = append(out, g)
	}
	return out
}

// TriggerGroupNames returns every group name with at least one trigger.
func (s *JobStore) TriggerGroupNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.triggerGroups))
	for g := range s.triggerGroups {
		out = append(out, g)
	}
	return out
}

// AddCalendar stores a named calendar. When updateTriggers is true, the
// scheduler thread is woken; triggers referencing name apply the new
// calendar from their next advance, and an already computed nextFireTime
// is not recomputed.
func (s *JobStore) AddCalendar(name string, cal Calendar, replace, updateTriggers bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !replace {
		if _, exists := s.calendars[name]; exists {
			return WrapCalendarError("addCalendar", name, ErrObjectAlreadyExists)
		}
	}
	s.calendars[name] = cal
	if updateTriggers {
		// Triggers referencing name pick up the new exclusion set starting
		// from their next natural advance(); we don't retroactively rewrite
		// an already-computed nextFireTime here to avoid double-counting
		// SimpleTrigger's repeat count.
		s.wake()
	}
	return nil
}

// DeleteCalendar removes a named calendar, refusing when any trigger still
// references it.
func (s *JobStore) DeleteCalendar(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.triggers {
		if t.CalendarName() == name {
			return WrapCalendarError("deleteCalendar", name, ErrCalendarInUse)
		}
	}
	if _, ok := s.calendars[name]; !ok {
		return WrapCalendarError("deleteCalendar", name, ErrCalendarNotFound)
	}
	delete(s.calendars, name)
	return nil
}

// GetCalendar returns the named calendar, if any.
func (s *JobStore) GetCalendar(name string) (Calendar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calendars[name]
	return c, ok
}

// CurrentlyExecuting returns a snapshot of every in-flight FiredTrigger.
func (s *JobStore) CurrentlyExecuting() []*FiredTrigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*FiredTrigger, 0, len(s.fired))
	for _, ft := range s.fired {
		out = append(out, ft)
	}
	return out
}

// Clear deletes every job, trigger, and calendar.
func (s *JobStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make(map[Key]*JobDetail)
	s.triggers = make(map[Key]Trigger)
	s.jobToTriggers = make(map[Key]map[Key]struct{})
	s.jobGroups = make(map[string]map[Key]struct{})
	s.triggerGroups = make(map[string]map[Key]struct{})
	s.pausedJobGroups = make(map[string]struct{})
	s.pausedTriggerGroups = make(map[string]struct{})
	s.blockedJobs = make(map[Key]struct{})
	s.fired = make(map[string]*FiredTrigger)
	s.calendars = make(map[string]Calendar)
}
