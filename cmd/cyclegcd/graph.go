// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vireolabs/cyclegc/internal/config"
	"github.com/vireolabs/cyclegc/internal/graphquery"
)

var graphAddr string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the graph of a running `cyclegcd serve` instance",
}

var graphRootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List the nodes currently buffered as suspected cycle roots",
	RunE:  runGraphRoots,
}

var graphCyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List structural cycles found among the current roots' reachable graph",
	RunE:  runGraphCycles,
}

func init() {
	graphCmd.PersistentFlags().StringVar(&graphAddr, "addr", "http://"+config.DefaultServerAddr, "address of a running cyclegcd serve instance")
}

// remoteSnapshot mirrors internal/snapshot.Snapshot's wire shape without
// importing go-openapi/uuid types the CLI has no use for.
type remoteSnapshot struct {
	ID        string                    `json:"id"`
	TakenAt   time.Time                 `json:"taken_at"`
	Label     string                    `json:"label,omitempty"`
	Roots     []graphquery.NodeSnapshot `json:"roots"`
	Reachable []graphquery.NodeSnapshot `json:"reachable"`
}

func fetchGraph(addr string) (remoteSnapshot, error) {
	var snap remoteSnapshot
	resp, err := http.Get(addr + "/graph")
	if err != nil {
		return snap, fmt.Errorf("fetching /graph from %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("unexpected status %d from %s/graph", resp.StatusCode, addr)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

func runGraphRoots(cmd *cobra.Command, args []string) error {
	snap, err := fetchGraph(graphAddr)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(snap.Roots)
	}
	for _, n := range snap.Roots {
		fmt.Printf("node %d  color=%-7s count=%d  children=%v\n", n.ID, n.Color, n.Count, n.Children)
	}
	return nil
}

func runGraphCycles(cmd *cobra.Command, args []string) error {
	snap, err := fetchGraph(graphAddr)
	if err != nil {
		return err
	}
	cycles := findCycles(snap.Reachable)
	if jsonOutput {
		return outputJSON(cycles)
	}
	if len(cycles) == 0 {
		fmt.Println("no structural cycles found")
		return nil
	}
	for i, cycle := range cycles {
		ids := make([]uint64, len(cycle))
		for j, n := range cycle {
			ids[j] = n.ID
		}
		fmt.Printf("cycle %d: %v\n", i+1, ids)
	}
	return nil
}

// findCycles adapts internal/graphquery.Querier.FindCycles' DFS-with-stack
// algorithm to a plain node slice, since the CLI only has a decoded
// snapshot rather than a live *cyclegc.Context to query.
func findCycles(nodes []graphquery.NodeSnapshot) [][]graphquery.NodeSnapshot {
	byID := make(map[uint64]graphquery.NodeSnapshot, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var cycles [][]graphquery.NodeSnapshot
	seen := map[uint64]bool{}

	for _, start := range nodes {
		if seen[start.ID] {
			continue
		}
		onStack := map[uint64]int{}
		var stack []graphquery.NodeSnapshot
		var walk func(n graphquery.NodeSnapshot)
		walk = func(n graphquery.NodeSnapshot) {
			if idx, ok := onStack[n.ID]; ok {
				cycle := append([]graphquery.NodeSnapshot(nil), stack[idx:]...)
				cycles = append(cycles, cycle)
				return
			}
			if seen[n.ID] {
				return
			}
			seen[n.ID] = true
			onStack[n.ID] = len(stack)
			stack = append(stack, n)
			for _, childID := range n.Children {
				if child, ok := byID[childID]; ok {
					walk(child)
				}
			}
			stack = stack[:len(stack)-1]
			delete(onStack, n.ID)
		}
		walk(start)
	}
	return cycles
}
