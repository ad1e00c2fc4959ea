package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	cronlib "github.com/robfig/cron/v3"
)

// ErrValidationFailed wraps every validation failure returned by Validate.
var ErrValidationFailed = errors.New("config validation failed")

var configValidator *validator.Validate

// cronParser accepts five fields, or six with a leading seconds field.
var cronParser = cronlib.NewParser(cronlib.SecondOptional | cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)

func init() {
	configValidator = validator.New()
	_ = configValidator.RegisterValidation("cron_expr", validateCronExpr)
}

// validateCronExpr best-effort checks a standard five/six-field cron
// expression via robfig/cron's parser. Quartz extensions (L, W, #, ?) are
// accepted unchecked here since core.CronTrigger's own evaluator, not this
// parser, is authoritative at schedule time (see DESIGN.md).
func validateCronExpr(fl validator.FieldLevel) bool {
	expr := fl.Field().String()
	if expr == "" {
		return true
	}
	if strings.ContainsAny(expr, "LW#?") {
		return true
	}
	_, err := cronParser.Parse(expr)
	return err == nil
}

// Validate checks struct tags on cfg and cross-field invariants the tags
// can't express: a cron trigger must carry Cron, a simple trigger a
// positive RepeatInterval when RepeatCount != 0, and so on.
func Validate(cfg *FileConfig) error {
	if err := configValidator.Struct(cfg); err != nil {
		return formatValidationErr(err)
	}

	seen := make(map[string]bool, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		key := j.Group + "/" + j.Name
		if seen[key] {
			return fmt.Errorf("%w: duplicate job %s", ErrValidationFailed, key)
		}
		seen[key] = true

		if err := validateTrigger(j.Name, j.Trigger); err != nil {
			return err
		}
	}
	return nil
}

func validateTrigger(jobName string, t TriggerConfig) error {
	switch t.Type {
	case "simple":
		if t.RepeatCount != 0 && t.RepeatInterval <= 0 {
			return fmt.Errorf("%w: job %s: simple trigger with repeat_count != 0 needs a positive repeat_interval", ErrValidationFailed, jobName)
		}
	case "cron":
		if t.Cron == "" {
			return fmt.Errorf("%w: job %s: cron trigger requires cron", ErrValidationFailed, jobName)
		}
		if !strings.ContainsAny(t.Cron, "LW#?") {
			if _, err := cronParser.Parse(t.Cron); err != nil {
				return fmt.Errorf("%w: job %s: invalid cron expression %q: %v", ErrValidationFailed, jobName, t.Cron, err)
			}
		}
	case "calendar-interval":
		if t.Interval <= 0 {
			return fmt.Errorf("%w: job %s: calendar-interval trigger requires a positive interval", ErrValidationFailed, jobName)
		}
		if t.IntervalUnit == "" {
			return fmt.Errorf("%w: job %s: calendar-interval trigger requires interval_unit", ErrValidationFailed, jobName)
		}
	case "daily-time-interval":
		if t.Interval <= 0 {
			return fmt.Errorf("%w: job %s: daily-time-interval trigger requires a positive interval", ErrValidationFailed, jobName)
		}
		if t.StartTimeOfDay == "" {
			return fmt.Errorf("%w: job %s: daily-time-interval trigger requires start_time_of_day", ErrValidationFailed, jobName)
		}
	}
	return nil
}

func formatValidationErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fmt.Sprintf("%s: failed %q check", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("%w:\n  %s", ErrValidationFailed, strings.Join(messages, "\n  "))
}
