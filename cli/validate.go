package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/netresearch/chronos/config"
	"github.com/netresearch/chronos/logging"
)

// ValidateCommand loads and validates a config file without starting a
// scheduler, printing the effective (default-populated) configuration as
// JSON on success.
type ValidateCommand struct {
	ConfigFile string `long:"config" env:"CHRONOS_CONFIG" description:"Config file to validate" default:"/etc/chronos/config.yaml"`
	LogLevel   string `long:"log-level" env:"CHRONOS_LOG_LEVEL" description:"Log level (overrides config)"`

	Logger *logging.StructuredLogger
}

// Execute runs the validation.
func (c *ValidateCommand) Execute(_ []string) error {
	if err := ApplyLogLevel(c.LogLevel, c.Logger); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	c.Logger.Debugf("validating %s", c.ConfigFile)
	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		c.Logger.Errorf("validation failed: %v", err)
		return err
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, string(out))

	c.Logger.Noticef("%s is valid (%d job(s))", c.ConfigFile, len(cfg.Jobs))
	return nil
}
