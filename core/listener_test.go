package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJobListener struct {
	name      string
	toExecute int
	executed  int
}

func (l *recordingJobListener) Name() string                                     { return l.name }
func (l *recordingJobListener) JobToBeExecuted(*JobExecutionContext)             { l.toExecute++ }
func (l *recordingJobListener) JobWasExecuted(*JobExecutionContext, error)       { l.executed++ }

type recordingTriggerListener struct {
	name      string
	fired     int
	veto      bool
	misfired  int
	completed int
}

func (l *recordingTriggerListener) Name() string { return l.name }
func (l *recordingTriggerListener) TriggerFired(Trigger, *JobExecutionContext) { l.fired++ }
func (l *recordingTriggerListener) VetoJobExecution(Trigger, *JobExecutionContext) bool {
	return l.veto
}
func (l *recordingTriggerListener) TriggerMisfired(Trigger) { l.misfired++ }
func (l *recordingTriggerListener) TriggerComplete(Trigger, *JobExecutionContext, CompletionInstruction) {
	l.completed++
}

type panickingTriggerListener struct{ recordingTriggerListener }

func (l *panickingTriggerListener) TriggerFired(Trigger, *JobExecutionContext) {
	panic("boom")
}

func newTestJEC(t *testing.T, jd *JobDetail, trig Trigger) *JobExecutionContext {
	t.Helper()
	return &JobExecutionContext{JobDetail: jd, Trigger: trig, FireTime: time.Now()}
}

func TestListenerManagerScopesDeliveryToMatchingKeys(t *testing.T) {
	lm := NewListenerManager(noopLogger{})
	matched := &recordingJobListener{name: "matched"}
	unmatched := &recordingJobListener{name: "unmatched"}

	lm.AddJobListener(matched, GroupEquals("network"))
	lm.AddJobListener(unmatched, GroupEquals("storage"))

	jd := NewJobDetail(NewKey("ping", "network"), "noop")
	jec := newTestJEC(t, jd, nil)

	lm.fireJobToBeExecuted(jec)
	lm.fireJobWasExecuted(jec, nil)

	assert.Equal(t, 1, matched.toExecute)
	assert.Equal(t, 1, matched.executed)
	assert.Equal(t, 0, unmatched.toExecute)
}

func TestListenerManagerUnscopedListenerReceivesEverything(t *testing.T) {
	lm := NewListenerManager(noopLogger{})
	l := &recordingJobListener{name: "all"}
	lm.AddJobListener(l)

	jd := NewJobDetail(NewKey("ping", "anygroup"), "noop")
	lm.fireJobToBeExecuted(newTestJEC(t, jd, nil))

	assert.Equal(t, 1, l.toExecute)
}

func TestListenerManagerTriggerFiredVeto(t *testing.T) {
	lm := NewListenerManager(noopLogger{})
	l := &recordingTriggerListener{name: "veto", veto: true}
	lm.AddTriggerListener(l)

	jd := NewJobDetail(NewKey("ping", ""), "noop")
	trig := NewSimpleTrigger(NewKey("t1", ""), jd.Key, time.Now(), 0, 0)

	veto := lm.fireTriggerFired(trig, newTestJEC(t, jd, trig))
	assert.True(t, veto)
	assert.Equal(t, 1, l.fired)
}

func TestListenerManagerPanicDoesNotStopOtherListeners(t *testing.T) {
	lm := NewListenerManager(noopLogger{})
	panicking := &panickingTriggerListener{recordingTriggerListener{name: "bad"}}
	ok := &recordingTriggerListener{name: "ok"}
	lm.AddTriggerListener(panicking)
	lm.AddTriggerListener(ok)

	jd := NewJobDetail(NewKey("ping", ""), "noop")
	trig := NewSimpleTrigger(NewKey("t1", ""), jd.Key, time.Now(), 0, 0)

	require.NotPanics(t, func() {
		lm.fireTriggerFired(trig, newTestJEC(t, jd, trig))
	})
	assert.Equal(t, 1, ok.fired)
}

func TestListenerManagerMisfiredAndComplete(t *testing.T) {
	lm := NewListenerManager(noopLogger{})
	l := &recordingTriggerListener{name: "l"}
	lm.AddTriggerListener(l)

	jd := NewJobDetail(NewKey("ping", ""), "noop")
	trig := NewSimpleTrigger(NewKey("t1", ""), jd.Key, time.Now(), 0, 0)

	lm.fireTriggerMisfired(trig)
	lm.fireTriggerComplete(trig, newTestJEC(t, jd, trig), SetTriggerComplete)

	assert.Equal(t, 1, l.misfired)
	assert.Equal(t, 1, l.completed)
}
