// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

/*
Package config provides configuration types and loading for cyclegcd.

# Overview

This package defines the configuration schema for operating a cyclegc
Context outside of a pure library embedding: the collection policy
(auto-collect, throttling), server bind addresses, telemetry exporters,
and snapshot/history storage paths.

Only the collection policy has behaviour attached here (NewRateThrottle).
The server, telemetry, snapshot and history fields are loaded and
validated but not read by any other package: `cyclegcd serve` takes its
settings from command-line flags.

# Configuration File

The configuration is stored at ~/.cyclegc/cyclegc.yaml and is created
automatically on first load with sensible defaults.

# Example

	collect_policy:
	  auto_collect: true
	  interval: 50ms
	  burst_size: 32
*/
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	// DefaultCollectInterval is the minimum spacing between throttled
	// auto-collect runs.
	DefaultCollectInterval = 50 * time.Millisecond

	// DefaultBurstSize is the token-bucket burst allowance for
	// auto-collect throttling.
	DefaultBurstSize = 32

	// DefaultServerAddr is the bind address for the operator HTTP server.
	DefaultServerAddr = "127.0.0.1:8098"

	// CurrentConfigVersion is the current configuration schema version.
	CurrentConfigVersion = "1.0.0"
)

// -----------------------------------------------------------------------------
// Root Configuration
// -----------------------------------------------------------------------------

// Config is the root configuration structure for cyclegcd.
//
// # Fields
//
//   - Meta: versioning metadata
//   - CollectPolicy: governs when auto-collection runs
//   - Server: operator HTTP/WebSocket surface
//   - Telemetry: metrics and tracing exporters
//   - Snapshot: heap snapshot export settings
//   - History: collection-pass history store settings
type Config struct {
	Meta ConfigMeta `yaml:"meta"`

	CollectPolicy CollectPolicy `yaml:"collect_policy"`

	Server ServerConfig `yaml:"server"`

	Telemetry TelemetryConfig `yaml:"telemetry"`

	Snapshot SnapshotConfig `yaml:"snapshot"`

	History HistoryConfig `yaml:"history"`
}

// ConfigMeta tracks configuration schema version and provenance.
type ConfigMeta struct {
	Version    string `yaml:"version"`
	CreatedAt  int64  `yaml:"created_at"`
	ModifiedAt int64  `yaml:"modified_at"`
	ModifiedBy string `yaml:"modified_by"`
}

// -----------------------------------------------------------------------------
// Collect Policy
// -----------------------------------------------------------------------------

// CollectPolicy governs a Context's auto-collect behaviour (spec.md §9's
// open question: calling collect_cycles after every decrement is
// quadratic on large deletion waves).
//
// When Interval is zero, auto-collect (if on) runs after every decrement,
// matching the original algorithm exactly, whatever BurstSize is. Once
// Interval is positive, a [golang.org/x/time/rate] limiter throttles runs.
type CollectPolicy struct {
	// AutoCollect mirrors cyclegc.Context.SetAutoCollect's default.
	AutoCollect bool `yaml:"auto_collect" validate:"-"`

	// Interval is the minimum spacing between throttled collect_cycles
	// runs. Zero disables throttling by interval.
	Interval time.Duration `yaml:"interval" validate:"gte=0"`

	// BurstSize is the token-bucket burst allowance. Zero is accepted;
	// NewRateThrottle treats any value below 1 as 1.
	BurstSize int `yaml:"burst_size" validate:"gte=0"`
}

// DefaultCollectPolicy returns the policy matching the original
// algorithm's unthrottled behaviour.
func DefaultCollectPolicy() CollectPolicy {
	return CollectPolicy{AutoCollect: true}
}

// -----------------------------------------------------------------------------
// Server Configuration
// -----------------------------------------------------------------------------

// ServerConfig configures the operator-facing HTTP/WebSocket server.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8098".
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// EnableWebsocket toggles the live heap-event stream at /ws/live.
	EnableWebsocket bool `yaml:"enable_websocket"`
}

// -----------------------------------------------------------------------------
// Telemetry Configuration
// -----------------------------------------------------------------------------

// TelemetryConfig configures metrics and tracing export.
type TelemetryConfig struct {
	// PrometheusEnabled exposes OTel metrics at /metrics via the
	// Prometheus exporter bridge.
	PrometheusEnabled bool `yaml:"prometheus_enabled"`

	// TracingEnabled emits one span per collect_cycles call (with child
	// spans per pass) to stdout via otel/exporters/stdout/stdouttrace.
	TracingEnabled bool `yaml:"tracing_enabled"`

	// InfluxAddr, when non-empty, additionally mirrors metrics to an
	// InfluxDB instance via influxdb-client-go.
	InfluxAddr string `yaml:"influx_addr,omitempty" validate:"omitempty,url"`

	// InfluxOrg and InfluxBucket are required when InfluxAddr is set.
	InfluxOrg    string `yaml:"influx_org,omitempty"`
	InfluxBucket string `yaml:"influx_bucket,omitempty"`
}

// -----------------------------------------------------------------------------
// Snapshot Configuration
// -----------------------------------------------------------------------------

// SnapshotConfig configures heap snapshot persistence and export.
type SnapshotConfig struct {
	// Dir is where local snapshot JSON files are written.
	Dir string `yaml:"dir"`

	// GCSBucket names a Google Cloud Storage bucket for snapshot uploads
	// (see internal/snapshot/export). Nothing uploads automatically
	// because it is set.
	GCSBucket string `yaml:"gcs_bucket,omitempty"`
}

// -----------------------------------------------------------------------------
// History Configuration
// -----------------------------------------------------------------------------

// HistoryConfig configures the embedded collection-pass history log.
type HistoryConfig struct {
	// Dir is the badger database directory for collection history.
	Dir string `yaml:"dir" validate:"required"`

	// RetainPasses bounds how many CollectCycles records are kept before
	// the oldest are pruned. Zero means unbounded.
	RetainPasses int `yaml:"retain_passes" validate:"gte=0"`
}

// -----------------------------------------------------------------------------
// Defaults & Validation
// -----------------------------------------------------------------------------

// DefaultConfig returns the default cyclegcd configuration.
func DefaultConfig() Config {
	now := time.Now().UnixMilli()
	return Config{
		Meta: ConfigMeta{
			Version:    CurrentConfigVersion,
			CreatedAt:  now,
			ModifiedAt: now,
			ModifiedBy: "cyclegcd",
		},
		CollectPolicy: DefaultCollectPolicy(),
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			EnableWebsocket: true,
		},
		Telemetry: TelemetryConfig{
			PrometheusEnabled: true,
			TracingEnabled:    false,
		},
		Snapshot: SnapshotConfig{
			Dir: "~/.cyclegc/snapshots",
		},
		History: HistoryConfig{
			Dir:          "~/.cyclegc/history",
			RetainPasses: 10000,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration against its struct tags.
func Validate(cfg Config) error {
	return validate.Struct(cfg)
}
