// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero License v3.0. See LICENSE.

package main

import (
	"time"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// fanoutRecorder dispatches every event to a fixed set of Recorders, so
// `serve` can wire telemetry, history, and (optionally) InfluxDB
// recorders onto one Context at once.
type fanoutRecorder struct {
	recorders []cyclegc.Recorder
	onCycles  func(n int)
}

func (f *fanoutRecorder) NodeAllocated() {
	for _, r := range f.recorders {
		r.NodeAllocated()
	}
}

func (f *fanoutRecorder) NodeFreed() {
	for _, r := range f.recorders {
		r.NodeFreed()
	}
}

func (f *fanoutRecorder) RootBufferSize(n int) {
	for _, r := range f.recorders {
		r.RootBufferSize(n)
	}
}

func (f *fanoutRecorder) CollectionPass(pass string, d time.Duration) {
	for _, r := range f.recorders {
		r.CollectionPass(pass, d)
	}
}

func (f *fanoutRecorder) CyclesCollected(n int) {
	for _, r := range f.recorders {
		r.CyclesCollected(n)
	}
	if f.onCycles != nil {
		f.onCycles(n)
	}
}

var _ cyclegc.Recorder = (*fanoutRecorder)(nil)
