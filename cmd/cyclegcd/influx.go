// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// influxRecorder mirrors the same GC counters internal/telemetry exports
// to Prometheus, but pushes them to InfluxDB instead, for hosts that
// already run an Influx-based metrics pipeline. Grounded on the
// teacher's services/data_fetcher/main.go WriteAPIBlocking/NewPoint
// usage.
type influxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func newInfluxRecorder(addr, token, org, bucket string) (*influxRecorder, func(), error) {
	client := influxdb2.NewClient(addr, token)

	ok, err := client.Ping(context.Background())
	if err != nil || !ok {
		client.Close()
		return nil, nil, fmt.Errorf("influxdb not reachable at %s: %w", addr, err)
	}

	return &influxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}, client.Close, nil
}

func (r *influxRecorder) NodeAllocated() {}
func (r *influxRecorder) NodeFreed()     {}

func (r *influxRecorder) RootBufferSize(n int) {
	r.write("cyclegc_root_buffer", map[string]interface{}{"size": n})
}

func (r *influxRecorder) CollectionPass(pass string, d time.Duration) {
	r.write("cyclegc_pass_duration", map[string]interface{}{
		"pass_ms": float64(d.Microseconds()) / 1000.0,
	}, "pass", pass)
}

func (r *influxRecorder) CyclesCollected(n int) {
	r.write("cyclegc_cycles_collected", map[string]interface{}{"count": n})
}

func (r *influxRecorder) write(measurement string, fields map[string]interface{}, tagKV ...string) {
	tags := map[string]string{}
	for i := 0; i+1 < len(tagKV); i += 2 {
		tags[tagKV[i]] = tagKV[i+1]
	}
	point := influxdb2.NewPoint(measurement, tags, fields, time.Now())
	if err := r.writeAPI.WritePoint(context.Background(), point); err != nil {
		slog.Warn("failed to write point to influxdb", slog.String("measurement", measurement), slog.String("error", err.Error()))
	}
}

var _ cyclegc.Recorder = (*influxRecorder)(nil)
