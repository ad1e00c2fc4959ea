package cli

import "runtime"

// version is set via -ldflags "-X github.com/netresearch/chronos/cli.version=..."
// at release build time; it stays "dev" for local builds.
var version = "dev"

func goVersion() string {
	return runtime.Version()
}
