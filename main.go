package main

import (
	"os"

	"github.com/minecraft-mcp/minecraft-mcp-server/cmd"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Pass version info to cmd package
	cmd.SetVersionInfo(Version, BuildTime, GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
