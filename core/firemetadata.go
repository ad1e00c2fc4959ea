package core

import (
	"os"
	"time"
)

// Version is the chronos build version, set via ldflags during build.
var Version = "dev"

// defaultFireMetadata returns JobDataMap entries describing a firing: job and
// trigger identity, fire time, scheduler host and build version. Nothing in
// the package merges these entries into a firing's data map.
func defaultFireMetadata(key Key, triggerKey Key) JobDataMap {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	version := Version
	if version == "" {
		version = "dev"
	}

	return JobDataMap{
		"chronos.job.name":      key.Name,
		"chronos.job.group":     key.Group,
		"chronos.trigger.name":  triggerKey.Name,
		"chronos.trigger.group": triggerKey.Group,
		"chronos.fire.time":     time.Now().UTC().Format(time.RFC3339),
		"chronos.scheduler.host": hostname,
		"chronos.version":       version,
	}
}
