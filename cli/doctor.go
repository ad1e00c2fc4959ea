package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/netresearch/chronos/config"
	"github.com/netresearch/chronos/listeners"
	"github.com/netresearch/chronos/logging"
)

// DoctorCommand runs a battery of config and environment health checks
// without starting a scheduler. Grounded on the teacher's cli/doctor.go
// CheckResult/DoctorReport shape, narrowed from Docker/image connectivity
// checks to the config/trigger/listener checks a standalone library can
// actually perform: a generic doctor has no visibility into job classes or
// calendars an embedding program registers at runtime.
type DoctorCommand struct {
	ConfigFile string `long:"config" env:"CHRONOS_CONFIG" description:"Config file to check" default:"/etc/chronos/config.yaml"`
	LogLevel   string `long:"log-level" env:"CHRONOS_LOG_LEVEL" description:"Log level"`
	JSON       bool   `long:"json" description:"Output the report as JSON"`

	Logger *logging.StructuredLogger
}

// Status values for a single check.
const (
	statusPass = "pass"
	statusFail = "fail"
	statusSkip = "skip"
)

// CheckResult is the outcome of a single health check.
type CheckResult struct {
	Category string   `json:"category"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Message  string   `json:"message,omitempty"`
	Hints    []string `json:"hints,omitempty"`
}

// DoctorReport collects every check run by one Execute call.
type DoctorReport struct {
	Healthy bool          `json:"healthy"`
	Checks  []CheckResult `json:"checks"`
}

func (r *DoctorReport) add(c CheckResult) {
	if c.Status == statusFail {
		r.Healthy = false
	}
	r.Checks = append(r.Checks, c)
}

// Execute runs every check and reports the result.
func (c *DoctorCommand) Execute(_ []string) error {
	if err := ApplyLogLevel(c.LogLevel, c.Logger); err != nil {
		c.Logger.Warningf("failed to apply log level (using default): %v", err)
	}

	report := &DoctorReport{Healthy: true}

	var progress *ProgressReporter
	if !c.JSON {
		c.Logger.Noticef("running chronos diagnostics")
		progress = NewProgressReporter(c.Logger, 3)
	}

	if progress != nil {
		progress.Step(1, "checking configuration file")
	}
	cfg := c.checkConfiguration(report)

	if progress != nil {
		progress.Step(2, "checking listener configuration")
	}
	if cfg != nil {
		c.checkListeners(report, cfg.Listeners)
	}

	if progress != nil {
		progress.Step(3, "checking web server settings")
	}
	if cfg != nil {
		c.checkWebServer(report, cfg.Scheduler)
	}

	if progress != nil {
		progress.Complete("diagnostics complete")
	}

	if c.JSON {
		return c.outputJSON(report)
	}
	return c.outputHuman(report)
}

func (c *DoctorCommand) checkConfiguration(report *DoctorReport) *config.FileConfig {
	if _, err := os.Stat(c.ConfigFile); err != nil {
		report.add(CheckResult{
			Category: "Configuration",
			Name:     "File Exists",
			Status:   statusFail,
			Message:  fmt.Sprintf("config file not found: %s", c.ConfigFile),
			Hints: []string{
				"Run 'chronos validate --config=" + c.ConfigFile + "' after creating the file",
				"Or specify a path with --config=/path/to/config.yaml",
			},
		})
		return nil
	}
	report.add(CheckResult{Category: "Configuration", Name: "File Exists", Status: statusPass, Message: c.ConfigFile})

	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		report.add(CheckResult{
			Category: "Configuration",
			Name:     "Valid Syntax and Schedules",
			Status:   statusFail,
			Message:  err.Error(),
			Hints: []string{
				"Check YAML/INI syntax and required fields",
				"Cron expressions must be a standard five/six-field expression or use Quartz extensions (L, W, #, ?)",
			},
		})
		return nil
	}
	report.add(CheckResult{
		Category: "Configuration",
		Name:     "Valid Syntax and Schedules",
		Status:   statusPass,
		Message:  fmt.Sprintf("%d job(s) configured", len(cfg.Jobs)),
	})

	classes := make(map[string]bool, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		classes[j.Class] = true
	}
	if len(classes) > 0 {
		names := make([]string, 0, len(classes))
		for n := range classes {
			names = append(names, n)
		}
		report.add(CheckResult{
			Category: "Configuration",
			Name:     "Referenced Job Classes",
			Status:   statusSkip,
			Message:  fmt.Sprintf("%d class(es) referenced; verify each is registered via RegisterJob before run", len(names)),
			Hints:    []string{"Registration happens in the embedding program, not in this config file"},
		})
	}

	return cfg
}

func (c *DoctorCommand) checkListeners(report *DoctorReport, l config.ListenersConfig) {
	if l.Mail == nil && l.Slack == nil && l.Webhook == nil {
		report.add(CheckResult{Category: "Listeners", Name: "Configured Listeners", Status: statusSkip, Message: "none configured"})
		return
	}
	if l.Mail != nil {
		c.checkMailListener(report, l.Mail)
	}
	if l.Slack != nil {
		c.checkSlackListener(report, l.Slack)
	}
	if l.Webhook != nil {
		c.checkWebhookListener(report, l.Webhook)
	}
}

func (c *DoctorCommand) checkMailListener(report *DoctorReport, m *listeners.MailConfig) {
	var missing []string
	if m.SMTPHost == "" {
		missing = append(missing, "smtp_host")
	}
	if m.EmailTo == "" {
		missing = append(missing, "email_to")
	}
	if m.EmailFrom == "" {
		missing = append(missing, "email_from")
	}
	if len(missing) > 0 {
		report.add(CheckResult{
			Category: "Listeners",
			Name:     "Mail",
			Status:   statusFail,
			Message:  fmt.Sprintf("missing required field(s): %v", missing),
		})
		return
	}
	report.add(CheckResult{Category: "Listeners", Name: "Mail", Status: statusPass, Message: fmt.Sprintf("reports to %s", m.EmailTo)})
}

func (c *DoctorCommand) checkSlackListener(report *DoctorReport, s *listeners.SlackConfig) {
	if s.WebhookURL == "" {
		report.add(CheckResult{
			Category: "Listeners",
			Name:     "Slack",
			Status:   statusFail,
			Message:  "slack listener configured without a webhook_url",
		})
		return
	}
	report.add(CheckResult{Category: "Listeners", Name: "Slack", Status: statusPass, Message: "webhook configured"})
}

func (c *DoctorCommand) checkWebhookListener(report *DoctorReport, w *listeners.WebhookConfig) {
	if w.URL == "" {
		report.add(CheckResult{
			Category: "Listeners",
			Name:     "Webhook",
			Status:   statusFail,
			Message:  "webhook listener configured without a url",
		})
		return
	}
	report.add(CheckResult{Category: "Listeners", Name: "Webhook", Status: statusPass, Message: w.URL})
}

func (c *DoctorCommand) checkWebServer(report *DoctorReport, s config.SchedulerConfig) {
	if !s.WebEnabled {
		report.add(CheckResult{Category: "Web Server", Name: "Enabled", Status: statusSkip, Message: "web server disabled"})
		return
	}
	if s.WebAddr == "" {
		report.add(CheckResult{
			Category: "Web Server",
			Name:     "Listen Address",
			Status:   statusFail,
			Message:  "web_enabled is true but web_address is empty",
			Hints:    []string{"Set scheduler.web_address, e.g. \":8080\""},
		})
		return
	}
	report.add(CheckResult{Category: "Web Server", Name: "Listen Address", Status: statusPass, Message: s.WebAddr})
}

func (c *DoctorCommand) outputJSON(report *DoctorReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	if !report.Healthy {
		return fmt.Errorf("health check failed")
	}
	return nil
}

func (c *DoctorCommand) outputHuman(report *DoctorReport) error {
	var category string
	for _, check := range report.Checks {
		if check.Category != category {
			category = check.Category
			c.Logger.Noticef("%s", category)
		}
		if check.Message != "" {
			c.Logger.Noticef("  [%s] %s: %s", check.Status, check.Name, check.Message)
		} else {
			c.Logger.Noticef("  [%s] %s", check.Status, check.Name)
		}
		for _, hint := range check.Hints {
			c.Logger.Noticef("      -> %s", hint)
		}
	}

	fail := 0
	for _, check := range report.Checks {
		if check.Status == statusFail {
			fail++
		}
	}
	if report.Healthy {
		c.Logger.Noticef("summary: all checks passed")
		return nil
	}
	c.Logger.Noticef("summary: %d issue(s) found", fail)
	return fmt.Errorf("health check failed")
}
