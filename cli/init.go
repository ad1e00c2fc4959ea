package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/manifoldco/promptui"
	"gopkg.in/yaml.v3"

	"github.com/netresearch/chronos/config"
	"github.com/netresearch/chronos/logging"
)

// InitCommand interactively scaffolds a starter chronos config file.
// Grounded on the teacher's cli/init.go wizard, narrowed from Docker
// run/local job sections to chronos's class+trigger job model: the wizard
// can only ask for a job class name since the concrete work a class
// performs is registered by the embedding program, not by this file.
type InitCommand struct {
	Output   string `long:"output" short:"o" description:"Output file path" default:"./chronos.yaml"`
	LogLevel string `long:"log-level" env:"CHRONOS_LOG_LEVEL" description:"Log level"`

	Logger *logging.StructuredLogger
}

var jobNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Execute runs the interactive configuration wizard.
func (c *InitCommand) Execute(_ []string) error {
	if err := ApplyLogLevel(c.LogLevel, c.Logger); err != nil {
		c.Logger.Warningf("failed to apply log level (using default): %v", err)
	}

	c.Logger.Noticef("welcome to the chronos configuration wizard")

	if _, err := os.Stat(c.Output); err == nil && !c.confirmOverwrite() {
		c.Logger.Noticef("setup canceled")
		return nil
	}

	cfg := &config.FileConfig{}
	if err := c.promptScheduler(&cfg.Scheduler); err != nil {
		return fmt.Errorf("gather scheduler settings: %w", err)
	}

	if err := c.promptJobs(cfg); err != nil {
		return fmt.Errorf("gather job configuration: %w", err)
	}

	if err := c.saveConfig(cfg); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	c.Logger.Noticef("configuration saved to %s", c.Output)

	c.offerValidate()
	c.printNextSteps()
	return nil
}

func (c *InitCommand) confirmOverwrite() bool {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("File %s already exists. Overwrite", c.Output),
		IsConfirm: true,
		Default:   "n",
	}
	_, err := prompt.Run()
	return err == nil
}

func (c *InitCommand) promptScheduler(s *config.SchedulerConfig) error {
	c.Logger.Noticef("=== scheduler settings ===")

	namePrompt := promptui.Prompt{Label: "Instance name", Default: "chronos"}
	name, err := namePrompt.Run()
	if err != nil {
		return fmt.Errorf("prompt instance name: %w", err)
	}
	s.InstanceName = name
	s.InstanceID = "auto"
	s.ThreadCount = 10
	s.IdleWaitTime = 30 * time.Second
	s.MisfireThreshold = 60 * time.Second
	s.MaxBatchSize = 1

	webPrompt := promptui.Prompt{Label: "Enable web health endpoint", IsConfirm: true, Default: "Y"}
	_, err = webPrompt.Run()
	s.WebEnabled = err == nil
	if s.WebEnabled {
		addrPrompt := promptui.Prompt{Label: "Web listen address", Default: ":8081"}
		s.WebAddr, err = addrPrompt.Run()
		if err != nil {
			return fmt.Errorf("prompt web address: %w", err)
		}
	}

	levelPrompt := promptui.Select{Label: "Log level", Items: []string{"debug", "info", "warn", "error"}, CursorPos: 1}
	_, s.LogLevel, err = levelPrompt.Run()
	if err != nil {
		return fmt.Errorf("prompt log level: %w", err)
	}
	s.LogFormat = "json"

	return nil
}

func (c *InitCommand) promptJobs(cfg *config.FileConfig) error {
	c.Logger.Noticef("=== job configuration ===")

	for {
		addPrompt := promptui.Select{Label: "Add a job", Items: []string{"cron-triggered job", "fixed-interval job", "Skip - finish setup"}}
		_, choice, err := addPrompt.Run()
		if err != nil {
			return fmt.Errorf("prompt job kind: %w", err)
		}
		if choice == "Skip - finish setup" {
			if len(cfg.Jobs) == 0 {
				c.Logger.Warningf("no jobs configured; chronos will have nothing to schedule")
			}
			break
		}

		job, err := c.promptJob(choice == "cron-triggered job")
		if err != nil {
			return err
		}
		cfg.Jobs = append(cfg.Jobs, job)
		c.Logger.Noticef("added job: %s", job.Name)

		again := promptui.Prompt{Label: "Add another job", IsConfirm: true, Default: "n"}
		if _, err := again.Run(); err != nil {
			break
		}
	}
	return nil
}

func (c *InitCommand) promptJob(cron bool) (config.JobConfig, error) {
	var job config.JobConfig

	namePrompt := promptui.Prompt{
		Label: "Job name",
		Validate: func(input string) error {
			if !jobNamePattern.MatchString(input) {
				return fmt.Errorf("job name must be alphanumeric with hyphens or underscores")
			}
			return nil
		},
	}
	name, err := namePrompt.Run()
	if err != nil {
		return job, fmt.Errorf("prompt job name: %w", err)
	}
	job.Name = name

	classPrompt := promptui.Prompt{
		Label: "Job class (registered by the embedding program via RegisterJob)",
		Validate: func(input string) error {
			if input == "" {
				return fmt.Errorf("job class cannot be empty")
			}
			return nil
		},
	}
	job.Class, err = classPrompt.Run()
	if err != nil {
		return job, fmt.Errorf("prompt job class: %w", err)
	}

	if cron {
		exprPrompt := promptui.Prompt{
			Label:    "Cron expression (second minute hour day-of-month month day-of-week)",
			Default:  "0 0 * * * *",
			Validate: validateCronField,
		}
		expr, perr := exprPrompt.Run()
		if perr != nil {
			return job, fmt.Errorf("prompt cron expression: %w", perr)
		}
		job.Trigger = config.TriggerConfig{Type: "cron", Cron: expr, Misfire: "smart"}
		return job, nil
	}

	intervalPrompt := promptui.Prompt{Label: "Repeat interval (Go duration, e.g. 5m)", Default: "1h"}
	interval, perr := intervalPrompt.Run()
	if perr != nil {
		return job, fmt.Errorf("prompt repeat interval: %w", perr)
	}
	dur, perr := time.ParseDuration(interval)
	if perr != nil {
		return job, fmt.Errorf("parse repeat interval: %w", perr)
	}
	job.Trigger = config.TriggerConfig{Type: "simple", RepeatCount: -1, RepeatInterval: dur, Misfire: "smart"}
	return job, nil
}

func (c *InitCommand) saveConfig(cfg *config.FileConfig) error {
	dir := filepath.Dir(c.Output)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.Output, data, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (c *InitCommand) offerValidate() {
	prompt := promptui.Prompt{Label: "Validate configuration now", IsConfirm: true, Default: "Y"}
	if _, err := prompt.Run(); err != nil {
		return
	}
	if _, err := config.Load(c.Output); err != nil {
		c.Logger.Errorf("configuration validation failed: %v", err)
		return
	}
	c.Logger.Noticef("configuration is valid")
}

func (c *InitCommand) printNextSteps() {
	c.Logger.Noticef("next steps:")
	c.Logger.Noticef("  review configuration: cat %s", c.Output)
	c.Logger.Noticef("  validate: chronos validate --config=%s", c.Output)
	c.Logger.Noticef("  run: chronos run --config=%s", c.Output)
}

func validateCronField(expr string) error {
	if expr == "" {
		return errors.New("cron expression cannot be empty")
	}
	return nil
}
