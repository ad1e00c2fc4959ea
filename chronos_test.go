package chronos_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos"
	"github.com/netresearch/chronos/core"
	"github.com/netresearch/chronos/logging"
)

func testLogger() *logging.StructuredLogger {
	l := logging.NewStructuredLogger()
	l.SetOutput(io.Discard)
	return l
}

func noopFactory(_ *core.JobDetail) (core.JobFunc, error) {
	return func(context.Context, *core.JobExecutionContext, core.JobDataMap) error { return nil }, nil
}

func TestNewStartsInCreatedState(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	assert.Equal(t, chronos.StateCreated, s.State())
}

func TestNewNormalizesNonPositiveThreadCount(t *testing.T) {
	opts := chronos.DefaultOptions()
	opts.ThreadCount = 0
	s := chronos.New(opts, testLogger())
	// Scheduling a job still works with the normalized pool size.
	s.RegisterJob("noop", noopFactory)
	jd := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")
	_, err := s.ScheduleJob(jd, core.NewSimpleTrigger(chronos.NewKey("t1", ""), jd.Key, time.Now(), 0, 0))
	assert.NoError(t, err)
}

func TestScheduleJobAndDeleteJob(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	s.RegisterJob("noop", noopFactory)

	jd := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")
	trig := core.NewSimpleTrigger(chronos.NewKey("t1", ""), jd.Key, time.Now().Add(time.Hour), core.RepeatIndefinitely, time.Minute)

	next, err := s.ScheduleJob(jd, trig)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Contains(t, s.GetJobGroupNames(), core.DefaultGroup)

	assert.True(t, s.DeleteJob(jd.Key))
	assert.False(t, s.DeleteJob(jd.Key))
}

func TestAddJobRejectsNonDurableWithoutTrigger(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	jd := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")

	err := s.AddJob(jd, false, false)
	assert.Error(t, err)

	err = s.AddJob(jd, false, true)
	assert.NoError(t, err)
}

func TestTriggerJobRequiresExistingJob(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	err := s.TriggerJob(chronos.NewKey("missing", ""), nil)
	assert.ErrorIs(t, err, core.ErrJobNotFound)
}

func TestTriggerJobFiresSyntheticOneShotTrigger(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	jd := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")
	require.NoError(t, s.AddJob(jd, false, true))

	err := s.TriggerJob(jd.Key, core.JobDataMap{"x": 1})
	assert.NoError(t, err)

	triggers := s.GetTriggersOfJob(jd.Key)
	require.Len(t, triggers, 1)
	assert.Equal(t, 1, triggers[0].Data()["x"])
}

func TestRescheduleJobRequiresSameJob(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	jd1 := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")
	jd2 := core.NewJobDetail(chronos.NewKey("job2", ""), "noop")
	require.NoError(t, s.AddJob(jd1, false, true))
	require.NoError(t, s.AddJob(jd2, false, true))

	trig := core.NewSimpleTrigger(chronos.NewKey("t1", ""), jd1.Key, time.Now().Add(time.Hour), 0, 0)
	_, err := s.ScheduleTrigger(trig)
	require.NoError(t, err)

	wrongJob := core.NewSimpleTrigger(chronos.NewKey("t2", ""), jd2.Key, time.Now().Add(2*time.Hour), 0, 0)
	_, err = s.RescheduleJob(trig.TriggerKey(), wrongJob)
	assert.Error(t, err)

	sameJob := core.NewSimpleTrigger(chronos.NewKey("t1", ""), jd1.Key, time.Now().Add(2*time.Hour), 0, 0)
	_, err = s.RescheduleJob(trig.TriggerKey(), sameJob)
	assert.NoError(t, err)
}

func TestPauseAndResumeJobTransitionsTriggerState(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	jd := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")
	trig := core.NewSimpleTrigger(chronos.NewKey("t1", ""), jd.Key, time.Now().Add(time.Hour), core.RepeatIndefinitely, time.Minute)
	_, err := s.ScheduleJob(jd, trig)
	require.NoError(t, err)

	s.PauseJob(jd.Key)
	state, ok := s.GetTriggerState(trig.TriggerKey())
	require.True(t, ok)
	assert.Equal(t, core.StatePaused, state)

	s.ResumeJob(jd.Key)
	state, ok = s.GetTriggerState(trig.TriggerKey())
	require.True(t, ok)
	assert.Equal(t, core.StateWaiting, state)
}

func TestStartAndShutdownLifecycle(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	assert.Equal(t, chronos.StateCreated, s.State())

	s.Start()
	assert.Equal(t, chronos.StateStarted, s.State())

	s.Shutdown(true)
	assert.Equal(t, chronos.StateShutdown, s.State())
}

func TestAddAndDeleteCalendar(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	cal := core.NewWeeklyCalendar(time.UTC, time.Sunday)

	require.NoError(t, s.AddCalendar("weekends", cal, false, false))
	assert.Error(t, s.AddCalendar("weekends", cal, false, false))
	require.NoError(t, s.DeleteCalendar("weekends"))
}

func TestGetTriggerStateUnknownKey(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	_, ok := s.GetTriggerState(chronos.NewKey("missing", ""))
	assert.False(t, ok)
}

// recordingSchedulerListener appends every lifecycle event it observes, in
// order, so tests can assert on the sequence the facade emits them in.
type recordingSchedulerListener struct {
	events []string
}

func (l *recordingSchedulerListener) Name() string { return "recording" }
func (l *recordingSchedulerListener) SchedulerStarting() {
	l.events = append(l.events, "schedulerStarting")
}
func (l *recordingSchedulerListener) SchedulerStarted() {
	l.events = append(l.events, "schedulerStarted")
}
func (l *recordingSchedulerListener) SchedulerInStandbyMode() {
	l.events = append(l.events, "schedulerInStandbyMode")
}
func (l *recordingSchedulerListener) SchedulerShuttingdown() {
	l.events = append(l.events, "schedulerShuttingdown")
}
func (l *recordingSchedulerListener) SchedulerShutdown() {
	l.events = append(l.events, "schedulerShutdown")
}
func (l *recordingSchedulerListener) SchedulingDataCleared() {
	l.events = append(l.events, "schedulingDataCleared")
}
func (l *recordingSchedulerListener) JobScheduled(core.Trigger)   { l.events = append(l.events, "jobScheduled") }
func (l *recordingSchedulerListener) JobUnscheduled(core.Key)     { l.events = append(l.events, "jobUnscheduled") }
func (l *recordingSchedulerListener) JobAdded(*core.JobDetail)    { l.events = append(l.events, "jobAdded") }
func (l *recordingSchedulerListener) JobDeleted(core.Key)         { l.events = append(l.events, "jobDeleted") }
func (l *recordingSchedulerListener) JobPaused(core.Key)          { l.events = append(l.events, "jobPaused") }
func (l *recordingSchedulerListener) JobResumed(core.Key)         { l.events = append(l.events, "jobResumed") }
func (l *recordingSchedulerListener) TriggerPaused(core.Key)      { l.events = append(l.events, "triggerPaused") }
func (l *recordingSchedulerListener) TriggerResumed(core.Key)     { l.events = append(l.events, "triggerResumed") }
func (l *recordingSchedulerListener) SchedulerError(string, error) {
	l.events = append(l.events, "schedulerError")
}

func TestSchedulerListenerObservesStartBeforeStarted(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	rec := &recordingSchedulerListener{}
	s.AddSchedulerListener(rec)

	s.Start()
	require.GreaterOrEqual(t, len(rec.events), 2)
	assert.Equal(t, "schedulerStarting", rec.events[0])
	assert.Equal(t, "schedulerStarted", rec.events[1])

	s.Shutdown(true)
	require.Len(t, rec.events, 4)
	assert.Equal(t, "schedulerShuttingdown", rec.events[2])
	assert.Equal(t, "schedulerShutdown", rec.events[3])
}

func TestSchedulerListenerObservesJobAndTriggerMutations(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	rec := &recordingSchedulerListener{}
	s.AddSchedulerListener(rec)

	jd := core.NewJobDetail(chronos.NewKey("job1", ""), "noop")
	trig := core.NewSimpleTrigger(chronos.NewKey("t1", ""), jd.Key, time.Now().Add(time.Hour), core.RepeatIndefinitely, time.Minute)
	_, err := s.ScheduleJob(jd, trig)
	require.NoError(t, err)
	assert.Contains(t, rec.events, "jobScheduled")

	s.PauseJob(jd.Key)
	assert.Contains(t, rec.events, "jobPaused")

	s.ResumeJob(jd.Key)
	assert.Contains(t, rec.events, "jobResumed")

	assert.True(t, s.DeleteJob(jd.Key))
	assert.Contains(t, rec.events, "jobDeleted")
}
