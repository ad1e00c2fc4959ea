package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/netresearch/chronos/logging"
)

// ErrInvalidLogLevel indicates an invalid log level string was given on the
// command line or in a config file.
var ErrInvalidLogLevel = errors.New("invalid log level")

// ApplyLogLevel sets logger's level from a CLI/config string, accepting the
// same legacy logrus level names the teacher's daemon did.
func ApplyLogLevel(level string, logger *logging.StructuredLogger) error {
	if level == "" {
		return nil
	}

	var l logging.LogLevel
	switch strings.ToLower(level) {
	case "trace", "debug":
		l = logging.DebugLevel
	case "info", "notice":
		l = logging.InfoLevel
	case "warning", "warn":
		l = logging.WarnLevel
	case "error", "fatal", "panic", "critical":
		l = logging.ErrorLevel
	default:
		return fmt.Errorf("%w: %q (valid levels are debug, info, warn, error)", ErrInvalidLogLevel, level)
	}

	if logger != nil {
		logger.SetLevel(l)
	}
	return nil
}
