// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vireolabs/cyclegc/internal/snapshot"
	"github.com/vireolabs/cyclegc/internal/snapshot/diff"
)

var snapshotAddr string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture or compare heap snapshots",
}

var snapshotDumpCmd = &cobra.Command{
	Use:   "dump <output-file>",
	Short: "Fetch a snapshot from a running serve instance and write it to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDump,
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <before-file> <after-file>",
	Short: "Print a unified diff between two snapshot files",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotDiff,
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotAddr, "addr", "http://127.0.0.1:8098", "address of a running cyclegcd serve instance")
}

func runSnapshotDump(cmd *cobra.Command, args []string) error {
	snap, err := fetchGraph(snapshotAddr)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0640); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	fmt.Printf("wrote snapshot (%d roots, %d reachable) to %s\n", len(snap.Roots), len(snap.Reachable), args[0])
	return nil
}

func readSnapshotFile(path string) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read snapshot file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse snapshot file %s: %w", path, err)
	}
	return snap, nil
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	before, err := readSnapshotFile(args[0])
	if err != nil {
		return err
	}
	after, err := readSnapshotFile(args[1])
	if err != nil {
		return err
	}

	result, err := diff.Compare(before, after)
	if err != nil {
		return fmt.Errorf("comparing snapshots: %w", err)
	}
	if result.Unified == "" {
		fmt.Println("no differences")
		return nil
	}
	fmt.Print(result.Unified)
	return nil
}
