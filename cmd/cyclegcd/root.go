// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Exit codes, mirroring the teacher's cmd/aleutian/output.go.
const (
	exitSuccess = 0
	exitError   = 2
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "cyclegcd",
	Short: "Operator CLI for the cyclegc trial-deletion cycle collector",
	Long: `cyclegcd is a debug and operator surface for cyclegc: it runs the
library's literal test scenarios, serves a live HTTP+WebSocket view over
an in-process graph, and inspects or diffs heap snapshots. None of this
is required to use the cyclegc library itself.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of human-readable text")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphRootsCmd)
	graphCmd.AddCommand(graphCyclesCmd)
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotDumpCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
	rootCmd.AddCommand(inspectCmd)
}

// colorEnabled gates ANSI colour output the same way the teacher's
// cmd/aleutian/output.go gates JSON vs human formatting: only when
// stdout is a real terminal and JSON mode wasn't requested.
func colorEnabled() bool {
	return !jsonOutput && isatty.IsTerminal(os.Stdout.Fd())
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// fail prints msg/err to stderr (or as a JSON error object if --json was
// passed) and returns the process exit code to use.
func fail(msg string, err error) int {
	if jsonOutput {
		outputJSON(map[string]string{"error": fmt.Sprintf("%s: %v", msg, err)})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	}
	return exitError
}
