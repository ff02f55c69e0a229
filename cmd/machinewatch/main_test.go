package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestRunThenReport_SQLite(t *testing.T) {
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "intervals.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MONITOR_FLIP_CHANCE", "1")
	t.Setenv("MONITOR_WRITE_RATE", "0")

	out := execute(t, "run",
		"--sink", "sqlite",
		"--machines", "2",
		"--workers", "2",
		"--interval", "5ms",
		"--for", "200ms",
		"--seed", "1",
	)
	require.Contains(t, out, "workpool_items_submitted_total")
	require.Contains(t, out, "abandoned=0")

	out = execute(t, "report")
	require.Contains(t, out, "MACHINE")
	require.Contains(t, out, "run")
	require.Contains(t, out, "down")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	rootCmd.SetArgs([]string{"run", "--workers", "0", "--for", "10ms"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	require.Error(t, rootCmd.Execute())
}
