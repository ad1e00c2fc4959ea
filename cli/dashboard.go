package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/netresearch/chronos/logging"
)

// DashboardCommand opens a read-only, auto-refreshing table view of a
// running daemon's job groups and trigger groups by polling its /status
// endpoint. Grounded on the teacher's progress/terminal conventions and on
// the polling table pattern in gophpeek-phpeek-pm's internal/tui package,
// stripped of that tool's wizards, actions and multi-view navigation since
// this dashboard only reads.
type DashboardCommand struct {
	Addr     string        `long:"addr" env:"CHRONOS_DASHBOARD_ADDR" description:"Base URL of the running daemon's web server" default:"http://127.0.0.1:8081"`
	Interval time.Duration `long:"interval" description:"Refresh interval" default:"2s"`

	Logger *logging.StructuredLogger
}

// Execute launches the dashboard until the user quits.
func (c *DashboardCommand) Execute(_ []string) error {
	m := newDashboardModel(c.Addr, c.Interval)
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

var (
	dashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	dashOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	dashWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	dashErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	dashDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type dashboardStatus struct {
	Status          string           `json:"status"`
	Timestamp       time.Time        `json:"timestamp"`
	Uptime          float64          `json:"uptime_seconds"`
	SchedulerState  string           `json:"scheduler_state"`
	JobGroups       []string         `json:"job_groups"`
	TriggerGroups   []string         `json:"trigger_groups"`
	CurrentlyFiring int              `json:"currently_firing"`
	Checks          map[string]statusCheck `json:"checks"`
}

type statusCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusMsg struct {
	status *dashboardStatus
	err    error
}

type dashboardModel struct {
	addr     string
	interval time.Duration
	client   *http.Client

	status   *dashboardStatus
	lastErr  error
	jobTable table.Model
	lastPoll time.Time
	width    int
	height   int
}

func newDashboardModel(addr string, interval time.Duration) *dashboardModel {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	cols := []table.Column{
		{Title: "Job Group", Width: 30},
		{Title: "Trigger Group", Width: 30},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(false), table.WithHeight(10))
	return &dashboardModel{
		addr:     addr,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		jobTable: t,
	}
}

func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.poll(), tea.EnterAltScreen)
}

func (m *dashboardModel) poll() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Get(m.addr + "/status")
		if err != nil {
			return statusMsg{err: fmt.Errorf("fetch status: %w", err)}
		}
		defer resp.Body.Close()

		var s dashboardStatus
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return statusMsg{err: fmt.Errorf("decode status: %w", err)}
		}
		return statusMsg{status: &s}
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.poll()
		}
		return m, nil
	case tickMsg:
		return m, m.poll()
	case statusMsg:
		m.lastPoll = time.Now()
		if msg.err != nil {
			m.lastErr = msg.err
			return m, tick(m.interval)
		}
		m.lastErr = nil
		m.status = msg.status
		m.jobTable.SetRows(pairRows(msg.status.JobGroups, msg.status.TriggerGroups))
		return m, tick(m.interval)
	}
	return m, nil
}

func pairRows(jobGroups, triggerGroups []string) []table.Row {
	n := len(jobGroups)
	if len(triggerGroups) > n {
		n = len(triggerGroups)
	}
	rows := make([]table.Row, 0, n)
	for i := 0; i < n; i++ {
		var jg, tg string
		if i < len(jobGroups) {
			jg = jobGroups[i]
		}
		if i < len(triggerGroups) {
			tg = triggerGroups[i]
		}
		rows = append(rows, table.Row{jg, tg})
	}
	return rows
}

func (m *dashboardModel) View() string {
	if m.lastErr != nil {
		return dashTitleStyle.Render("chronos dashboard") + "\n\n" +
			dashErrStyle.Render(fmt.Sprintf("could not reach %s: %v", m.addr, m.lastErr)) +
			"\n\n" + dashDimStyle.Render("retrying every "+m.interval.String()+"  (q to quit)")
	}
	if m.status == nil {
		return dashTitleStyle.Render("chronos dashboard") + "\n\n" + dashDimStyle.Render("waiting for first status response...")
	}

	stateStyle := dashOKStyle
	switch m.status.Status {
	case "degraded":
		stateStyle = dashWarnStyle
	case "unhealthy":
		stateStyle = dashErrStyle
	}

	header := fmt.Sprintf(
		"%s   state: %s   uptime: %.0fs   firing: %d   polled: %s",
		dashTitleStyle.Render("chronos dashboard"),
		stateStyle.Render(m.status.SchedulerState),
		m.status.Uptime,
		m.status.CurrentlyFiring,
		m.lastPoll.Format("15:04:05"),
	)

	return header + "\n\n" + m.jobTable.View() + "\n\n" + dashDimStyle.Render("r refresh  q quit")
}
