// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package telemetry

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrInvalidProviderConfig is returned when a ProviderConfig is missing a
// required field.
var ErrInvalidProviderConfig = errors.New("invalid telemetry provider configuration")

// ProviderConfig configures the OTel meter and tracer providers this
// package constructs. It deliberately has no network-endpoint field: the
// metrics exporter is Prometheus pull-based (scraped over HTTP, see
// [Handler]) and the trace exporter writes to a local writer, so this
// library never dials an external collector on its own.
type ProviderConfig struct {
	// ServiceName names this process. Required: Validate rejects an empty
	// value. The providers are built without a resource, so it does not
	// appear in span or metric resource attributes.
	ServiceName string

	// TraceWriter receives exported spans as JSON. Defaults to io.Discard
	// when nil (tracing still runs, just isn't printed anywhere).
	TraceWriter io.Writer
}

// Validate reports whether cfg is usable.
func (cfg ProviderConfig) Validate() error {
	if cfg.ServiceName == "" {
		return errors.Join(ErrInvalidProviderConfig, errors.New("service name is required"))
	}
	return nil
}

// NewMeterProvider builds an SDK MeterProvider backed by the Prometheus
// exporter. The returned *prometheus.Exporter is also the Collector to
// register on a promhttp handler (see [Handler]).
func NewMeterProvider(cfg ProviderConfig) (*sdkmetric.MeterProvider, *prometheus.Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return mp, exporter, nil
}

// NewTracerProvider builds an SDK TracerProvider backed by the stdout
// span exporter, writing newline-delimited JSON to cfg.TraceWriter. No
// external trace collector is required, matching a library with no
// mandatory network surface.
func NewTracerProvider(cfg ProviderConfig) (*sdktrace.TracerProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := cfg.TraceWriter
	if w == nil {
		w = io.Discard
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return tp, nil
}

// Shutdown flushes and stops both providers. Safe to call with nils.
func Shutdown(ctx context.Context, mp *sdkmetric.MeterProvider, tp *sdktrace.TracerProvider) error {
	var errs []error
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
