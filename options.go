package chronos

import "time"

// Options configures a Scheduler, grounded on spec.md §6's options record
// and the teacher's cli/config.go Config struct shape (default-tagged
// struct, flat fields).
type Options struct {
	InstanceName              string        `default:"chronos"`
	InstanceID                string        `default:"auto"`
	ThreadCount               int           `default:"10"`
	ThreadPriority            int           `default:"5"`
	MakeSchedulerThreadDaemon bool          `default:"false"`
	BatchTimeWindow           time.Duration `default:"0s"`
	MaxBatchSize              int           `default:"1"`
	IdleWaitTime              time.Duration `default:"30s"`
	MisfireThreshold          time.Duration `default:"60s"`
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{
		InstanceName:     "chronos",
		InstanceID:       "auto",
		ThreadCount:      10,
		ThreadPriority:   5,
		BatchTimeWindow:  0,
		MaxBatchSize:     1,
		IdleWaitTime:     30 * time.Second,
		MisfireThreshold: 60 * time.Second,
	}
}
