package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables (injected via -ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	goVersion = runtime.Version()
	platform  = runtime.GOOS + "/" + runtime.GOARCH

	configPath string
)

func getVersionInfo() string {
	commitHash := commit
	if len(commit) > 8 {
		commitHash = commit[:8]
	}
	return fmt.Sprintf("machinewatch %s (%s) built with %s on %s", version, commitHash, goVersion, platform)
}

var rootCmd = &cobra.Command{
	Use:     "machinewatch",
	Version: version,
	Short:   "Machine run/down interval forwarder",
	Long: `machinewatch polls an 8-bit machine status word, turns every on/off
transition into a run or down interval and forwards the intervals to a sink
(log, Redis stream or SQLite) through a fixed-size worker pool.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.SetVersionTemplate(getVersionInfo() + "\n")

	rootCmd.AddCommand(runCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
