// Command scand runs the network scan job wrapper service.
package main

import (
	"github.com/cyberscan/scand/cmd/cli"
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
