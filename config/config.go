// Package config loads chronos's scheduler, job and listener definitions
// from YAML (primary format), legacy INI (property-file compatibility) or
// .env overrides, applies struct-tag defaults, validates the result and
// watches the source file for changes.
//
// Grounded on the teacher's cli/config.go (Config struct, NewConfig
// defaults, resolveConfigFiles glob handling) and cli/config_validate.go,
// generalized from Docker job sections to chronos's class+trigger job
// model.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/netresearch/chronos/listeners"
)

// FileConfig is the root document loaded from a config file.
type FileConfig struct {
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Jobs      []JobConfig     `yaml:"jobs" mapstructure:"jobs"`
	Listeners ListenersConfig `yaml:"listeners" mapstructure:"listeners"`
}

// SchedulerConfig mirrors chronos.Options plus the ambient settings
// (logging, web) that only the CLI entrypoint needs, adapted from the
// teacher's Config.Global block.
type SchedulerConfig struct {
	InstanceName     string        `yaml:"instance_name" mapstructure:"instance_name" default:"chronos"`
	InstanceID       string        `yaml:"instance_id" mapstructure:"instance_id" default:"auto"`
	ThreadCount      int           `yaml:"thread_count" mapstructure:"thread_count" default:"10" validate:"min=1,max=1000"`
	IdleWaitTime     time.Duration `yaml:"idle_wait_time" mapstructure:"idle_wait_time" default:"30s" validate:"min=1000000000"`
	MisfireThreshold time.Duration `yaml:"misfire_threshold" mapstructure:"misfire_threshold" default:"60s"`
	BatchTimeWindow  time.Duration `yaml:"batch_time_window" mapstructure:"batch_time_window" default:"0s"`
	MaxBatchSize     int           `yaml:"max_batch_size" mapstructure:"max_batch_size" default:"1" validate:"min=1"`

	LogLevel  string `yaml:"log_level" mapstructure:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format" default:"json" validate:"oneof=json text"`

	WebEnabled bool   `yaml:"web_enabled" mapstructure:"web_enabled" default:"false"`
	WebAddr    string `yaml:"web_address" mapstructure:"web_address" default:":8081"`
}

// JobConfig describes one job and its single trigger, adapted from the
// teacher's per-job-kind config structs (ExecJobConfig etc.) collapsed
// into one class-addressed shape since chronos jobs are opaque JobFuncs
// rather than a fixed set of Docker operations.
type JobConfig struct {
	Name    string            `yaml:"name" mapstructure:"name" validate:"required"`
	Group   string            `yaml:"group" mapstructure:"group" default:"DEFAULT"`
	Class   string            `yaml:"class" mapstructure:"class" validate:"required"`
	Data    map[string]string `yaml:"data" mapstructure:"data"`
	Durable bool              `yaml:"durable" mapstructure:"durable" default:"false"`
	Trigger TriggerConfig     `yaml:"trigger" mapstructure:"trigger" validate:"required"`
}

// TriggerConfig describes one of the four trigger kinds. Only the fields
// relevant to Type are read; the rest are ignored.
type TriggerConfig struct {
	Type string `yaml:"type" mapstructure:"type" validate:"required,oneof=simple cron calendar-interval daily-time-interval"`

	// simple
	RepeatCount    int           `yaml:"repeat_count" mapstructure:"repeat_count"`
	RepeatInterval time.Duration `yaml:"repeat_interval" mapstructure:"repeat_interval"`

	// cron
	Cron     string `yaml:"cron" mapstructure:"cron"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// calendar-interval and daily-time-interval
	Interval     int    `yaml:"interval" mapstructure:"interval"`
	IntervalUnit string `yaml:"interval_unit" mapstructure:"interval_unit" validate:"omitempty,oneof=second minute hour day week month year"`

	// daily-time-interval
	StartTimeOfDay string   `yaml:"start_time_of_day" mapstructure:"start_time_of_day"`
	EndTimeOfDay   string   `yaml:"end_time_of_day" mapstructure:"end_time_of_day"`
	DaysOfWeek     []string `yaml:"days_of_week" mapstructure:"days_of_week"`

	Misfire  string `yaml:"misfire" mapstructure:"misfire" default:"smart" validate:"omitempty,oneof=smart fire-once-now do-nothing ignore"`
	Calendar string `yaml:"calendar" mapstructure:"calendar"`
}

// ListenersConfig names the notification sinks to wire up. Each pointer is
// nil when the section is absent from the file.
type ListenersConfig struct {
	Slack   *listeners.SlackConfig   `yaml:"slack,omitempty" mapstructure:"slack"`
	Mail    *listeners.MailConfig    `yaml:"mail,omitempty" mapstructure:"mail"`
	Webhook *listeners.WebhookConfig `yaml:"webhook,omitempty" mapstructure:"webhook"`
}

// Load reads path (YAML, or legacy .ini/.env) and returns a validated,
// default-populated FileConfig. The filename may be a glob; when multiple
// files match they are merged in lexical order, later files overriding
// earlier ones, mirroring the teacher's resolveConfigFiles/BuildFromFile
// multi-file behavior.
func Load(path string) (*FileConfig, error) {
	files, err := resolveConfigFiles(path)
	if err != nil {
		return nil, err
	}

	cfg := &FileConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	for _, f := range files {
		if err := loadOneInto(cfg, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	for i := range cfg.Jobs {
		if err := defaults.Set(&cfg.Jobs[i]); err != nil {
			return nil, fmt.Errorf("apply job defaults: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadOneInto(cfg *FileConfig, path string) error {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return loadYAML(cfg, path)
	case ".ini", ".cfg", ".conf":
		return loadLegacyINI(cfg, path)
	case ".env":
		return applyEnvOverrides(cfg, path)
	default:
		return loadYAML(cfg, path)
	}
}

func loadYAML(cfg *FileConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolveConfigFiles expands a glob pattern, falling back to the literal
// path when nothing matches, adapted from the teacher's helper of the same
// name.
func resolveConfigFiles(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		files = []string{pattern}
	}
	sort.Strings(files)
	return files, nil
}
