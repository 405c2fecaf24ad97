// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package telemetry wires a [pkg/cyclegc.Context] to OpenTelemetry: metric
// instruments for allocation/collection counters and the root-buffer size,
// and one trace span per CollectCycles call with a child span per pass
// (mark_roots/scan_roots/collect_roots).
//
// The core algorithm package never imports this package or any OTel
// package directly; it only calls the [pkg/cyclegc.Recorder] interface.
// [OtelRecorder] is the concrete implementation a host wires in with
// [pkg/cyclegc.WithRecorder].
package telemetry
