// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Command cyclegcd is a debug and operator CLI for the cyclegc library,
// grounded on the teacher's cmd/aleutian root-command wiring
// (cmd/aleutian/main.go, commands.go): a spf13/cobra root command with
// subcommand registration in init(), and a plain log.Fatalf on execute
// failure.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("cyclegcd: %v", err)
	}
}
