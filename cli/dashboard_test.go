package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairRowsHandlesUnevenLengths(t *testing.T) {
	rows := pairRows([]string{"DEFAULT", "batch"}, []string{"triggers"})
	require.Len(t, rows, 2)
	assert.Equal(t, "DEFAULT", rows[0][0])
	assert.Equal(t, "triggers", rows[0][1])
	assert.Equal(t, "batch", rows[1][0])
	assert.Equal(t, "", rows[1][1])
}

func TestPairRowsEmpty(t *testing.T) {
	assert.Empty(t, pairRows(nil, nil))
}

func TestDashboardModelPollsStatusEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dashboardStatus{
			Status:         "healthy",
			SchedulerState: "started",
			JobGroups:      []string{"DEFAULT"},
			TriggerGroups:  []string{"DEFAULT"},
		})
	}))
	defer srv.Close()

	m := newDashboardModel(srv.URL, 50*time.Millisecond)
	msg := m.poll()()

	sm, ok := msg.(statusMsg)
	require.True(t, ok)
	require.NoError(t, sm.err)
	require.NotNil(t, sm.status)
	assert.Equal(t, "started", sm.status.SchedulerState)
}

func TestDashboardModelPollErrorSetsLastErr(t *testing.T) {
	m := newDashboardModel("http://127.0.0.1:0", time.Second)
	msg := m.poll()()

	sm, ok := msg.(statusMsg)
	require.True(t, ok)
	assert.Error(t, sm.err)

	model, _ := m.Update(sm)
	dm := model.(*dashboardModel)
	assert.Error(t, dm.lastErr)
}

func TestDashboardModelViewBeforeFirstPoll(t *testing.T) {
	m := newDashboardModel("http://example.invalid", time.Second)
	assert.Contains(t, m.View(), "waiting for first status response")
}
