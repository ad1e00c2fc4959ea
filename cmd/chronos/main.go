package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/netresearch/chronos/cli"
	"github.com/netresearch/chronos/logging"
)

var build string

func main() {
	var pre struct {
		LogLevel   string `long:"log-level"`
		ConfigFile string `long:"config" default:"/etc/chronos/config.yaml"`
	}
	args := os.Args[1:]
	preParser := flags.NewParser(&pre, flags.IgnoreUnknown)
	_, _ = preParser.ParseArgs(args)

	logger := logging.NewStructuredLogger()
	if err := cli.ApplyLogLevel(pre.LogLevel, logger); err != nil {
		logger.Warningf("%v", err)
	}

	parser := flags.NewNamedParser("chronos", flags.Default|flags.AllowBoolValues)
	_, _ = parser.AddCommand(
		"run",
		"run the scheduler as a long-lived process",
		"",
		&cli.RunCommand{Logger: logger, LogLevel: pre.LogLevel, ConfigFile: pre.ConfigFile},
	)
	_, _ = parser.AddCommand(
		"validate",
		"load and validate a config file without starting the scheduler",
		"",
		&cli.ValidateCommand{Logger: logger, LogLevel: pre.LogLevel, ConfigFile: pre.ConfigFile},
	)
	_, _ = parser.AddCommand(
		"doctor",
		"diagnose config and environment health",
		"",
		&cli.DoctorCommand{Logger: logger, LogLevel: pre.LogLevel, ConfigFile: pre.ConfigFile},
	)
	_, _ = parser.AddCommand(
		"dashboard",
		"open a read-only dashboard for a running daemon",
		"",
		&cli.DashboardCommand{Logger: logger},
	)
	_, _ = parser.AddCommand(
		"init",
		"interactively scaffold a starter config file",
		"",
		&cli.InitCommand{Logger: logger, LogLevel: pre.LogLevel},
	)

	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return
		}

		var flagErr *flags.Error
		if errors.As(err, &flagErr) {
			parser.WriteHelp(os.Stdout)
			_, _ = fmt.Fprintf(os.Stdout, "\nbuild: %s\n", build)
		}

		logger.Errorf("command failed: %v", err)
		os.Exit(1)
	}
}
