package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/netresearch/chronos"
	"github.com/netresearch/chronos/config"
	"github.com/netresearch/chronos/core"
	"github.com/netresearch/chronos/listeners"
	"github.com/netresearch/chronos/logging"
	"github.com/netresearch/chronos/metrics"
	"github.com/netresearch/chronos/web"
)

// RunCommand starts the scheduler as a long-running process, loading its
// configuration from a file and serving it until an interrupt or terminate
// signal arrives. Grounded on the teacher's cli/daemon.go boot/start/shutdown
// split, generalized from Docker job wiring to chronos's class+trigger model.
type RunCommand struct {
	ConfigFile string `long:"config" env:"CHRONOS_CONFIG" description:"Config file path" default:"/etc/chronos/config.yaml"`
	LogLevel   string `long:"log-level" env:"CHRONOS_LOG_LEVEL" description:"Log level (debug,info,warn,error)"`

	// JobFactories registers job classes referenced by the config file
	// before jobs are scheduled. A generic chronos binary has no job
	// classes of its own; an embedding program sets this field before
	// Execute runs. Execute fails when a configured job names a class with
	// no factory.
	JobFactories map[string]chronos.JobFactory

	Logger *logging.StructuredLogger

	scheduler *chronos.Scheduler
	webServer *web.Server
	watcher   *config.Watcher
}

// Scheduler returns the built scheduler once boot has run, or nil before.
func (c *RunCommand) Scheduler() *chronos.Scheduler {
	return c.scheduler
}

// Execute runs the boot/start/wait lifecycle.
func (c *RunCommand) Execute(_ []string) error {
	if err := c.boot(); err != nil {
		return err
	}
	return c.start()
}

func (c *RunCommand) boot() error {
	if err := ApplyLogLevel(c.LogLevel, c.Logger); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	progress := NewProgressIndicator(c.Logger, fmt.Sprintf("loading config from %s", c.ConfigFile))
	progress.Start()
	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		progress.Stop(false, err.Error())
		return fmt.Errorf("load config: %w", err)
	}
	progress.Stop(true, "config loaded and validated")

	if c.LogLevel == "" {
		if err := ApplyLogLevel(cfg.Scheduler.LogLevel, c.Logger); err != nil {
			c.Logger.Warningf("failed to apply configured log level: %v", err)
		}
	}

	c.scheduler = chronos.New(cfg.ToOptions(), c.Logger)

	for class, factory := range c.JobFactories {
		c.scheduler.RegisterJob(class, factory)
	}

	if err := cfg.ApplyJobs(c.scheduler); err != nil {
		return fmt.Errorf("apply jobs: %w", err)
	}

	if err := c.wireListeners(cfg.Listeners); err != nil {
		return fmt.Errorf("wire listeners: %w", err)
	}

	metrics.RecordBuildInfo(version, goVersion())

	if cfg.Scheduler.WebEnabled {
		checker := web.NewHealthChecker(c.scheduler)
		c.webServer = web.NewServer(cfg.Scheduler.WebAddr, checker)
	}

	watcher, err := config.NewWatcher(c.ConfigFile, c.Logger, time.Second)
	if err != nil {
		c.Logger.Warningf("config watcher disabled: %v", err)
	} else {
		c.watcher = watcher
	}

	return nil
}

func (c *RunCommand) wireListeners(cfg config.ListenersConfig) error {
	if cfg.Mail != nil {
		l, err := listeners.NewMail(*cfg.Mail, c.Logger)
		if err != nil {
			return fmt.Errorf("mail listener: %w", err)
		}
		c.scheduler.AddJobListener(l)
	}
	if cfg.Slack != nil {
		l, err := listeners.NewSlack(*cfg.Slack, c.Logger)
		if err != nil {
			return fmt.Errorf("slack listener: %w", err)
		}
		c.scheduler.AddJobListener(l)
	}
	if cfg.Webhook != nil {
		l, err := listeners.NewWebhook(*cfg.Webhook, c.Logger)
		if err != nil {
			return fmt.Errorf("webhook listener: %w", err)
		}
		l.SetMetricsRecorder(c.scheduler.MetricsRecorder())
		c.scheduler.AddJobListener(l)
	}
	return nil
}

func (c *RunCommand) start() error {
	shutdown := c.scheduler.ShutdownManager()
	shutdown.ListenForShutdown()

	if c.watcher != nil {
		watchCtx, cancelWatch := context.WithCancel(context.Background())
		go func() { _ = c.watcher.Run(watchCtx) }()
		shutdown.RegisterHook(core.ShutdownHook{
			Name:     "config-watcher",
			Priority: 5,
			Hook: func(context.Context) error {
				cancelWatch()
				return c.watcher.Stop()
			},
		})
	}

	c.scheduler.Start()
	c.Logger.Noticef("scheduler started with %d job group(s)", len(c.scheduler.GetJobGroupNames()))

	if c.webServer != nil {
		srv := c.webServer
		shutdown.RegisterHook(core.ShutdownHook{
			Name:     "web-server",
			Priority: 15,
			Hook:     srv.Shutdown,
		})
		_ = srv.Start()
		c.Logger.Noticef("web server listening")
	}

	c.Logger.Noticef("chronos is running; send SIGINT/SIGTERM to stop")
	<-shutdown.ShutdownChan()
	return nil
}
