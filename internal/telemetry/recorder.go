// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// instrumentationName is the OTel instrumentation scope for both the
// tracer and meter this package creates.
const instrumentationName = "github.com/vireolabs/cyclegc/internal/telemetry"

// OtelRecorder implements [cyclegc.Recorder] on top of OpenTelemetry
// metric instruments and a tracer. One CollectCycles call is reported as
// a "collect_cycles" span with a child span per pass; a host not
// interested in tracing can still use it purely for its metrics.
type OtelRecorder struct {
	tracer trace.Tracer

	nodesAllocated  metric.Int64Counter
	nodesFreed      metric.Int64Counter
	rootBufferSize  metric.Int64Gauge
	passDuration    metric.Float64Histogram
	cyclesCollected metric.Int64Counter

	mu        sync.Mutex
	parentCtx context.Context
	parent    trace.Span
}

// NewOtelRecorder creates a recorder using tp and mp's global-or-supplied
// providers. serviceVersion is attached as the instrumentation scope
// version (empty is fine).
func NewOtelRecorder(tp trace.TracerProvider, mp metric.MeterProvider, serviceVersion string) (*OtelRecorder, error) {
	tracer := tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(serviceVersion))
	meter := mp.Meter(instrumentationName, metric.WithInstrumentationVersion(serviceVersion))

	r := &OtelRecorder{tracer: tracer}

	var err error
	r.nodesAllocated, err = meter.Int64Counter(
		"cyclegc.nodes.allocated",
		metric.WithDescription("Total nodes allocated"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}
	r.nodesFreed, err = meter.Int64Counter(
		"cyclegc.nodes.freed",
		metric.WithDescription("Total nodes freed, by release or collect_white"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}
	r.rootBufferSize, err = meter.Int64Gauge(
		"cyclegc.root_buffer.size",
		metric.WithDescription("Current size of the suspected-cycle root buffer"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}
	r.passDuration, err = meter.Float64Histogram(
		"cyclegc.collect.pass.duration",
		metric.WithDescription("Wall-clock duration of one collect_cycles pass"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	r.cyclesCollected, err = meter.Int64Counter(
		"cyclegc.cycles.collected",
		metric.WithDescription("Nodes freed via collect_white (genuine cycle garbage)"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// NodeAllocated implements cyclegc.Recorder.
func (r *OtelRecorder) NodeAllocated() {
	r.nodesAllocated.Add(context.Background(), 1)
}

// NodeFreed implements cyclegc.Recorder.
func (r *OtelRecorder) NodeFreed() {
	r.nodesFreed.Add(context.Background(), 1)
}

// RootBufferSize implements cyclegc.Recorder.
func (r *OtelRecorder) RootBufferSize(n int) {
	r.rootBufferSize.Record(context.Background(), int64(n))
}

// CollectionPass implements cyclegc.Recorder. mark_roots opens the parent
// "collect_cycles" span; each pass gets its own child span, reconstructed
// after the fact from the reported duration since the Context does not
// (and should not) thread a context.Context through the hot decrement
// path.
func (r *OtelRecorder) CollectionPass(pass string, d time.Duration) {
	ctx := context.Background()
	end := time.Now()
	start := end.Add(-d)

	r.mu.Lock()
	if pass == "mark_roots" || r.parent == nil {
		r.parentCtx, r.parent = r.tracer.Start(ctx, "collect_cycles", trace.WithTimestamp(start))
	}
	parentCtx := r.parentCtx
	r.mu.Unlock()

	_, span := r.tracer.Start(parentCtx, pass, trace.WithTimestamp(start))
	span.End(trace.WithTimestamp(end))

	r.passDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("pass", pass)))
}

// CyclesCollected implements cyclegc.Recorder, closing out the span opened
// by the "mark_roots" pass of the same CollectCycles call.
func (r *OtelRecorder) CyclesCollected(n int) {
	r.cyclesCollected.Add(context.Background(), int64(n))

	r.mu.Lock()
	parent := r.parent
	r.parent = nil
	r.parentCtx = nil
	r.mu.Unlock()

	if parent == nil {
		return
	}
	parent.SetAttributes(attribute.Int("cycles_collected", n))
	if n > 0 {
		parent.SetStatus(codes.Ok, "cycles reclaimed")
	}
	parent.End()
}

var _ cyclegc.Recorder = (*OtelRecorder)(nil)
