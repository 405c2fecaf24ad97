// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler to mount at GET /metrics. The
// Prometheus exporter registered on mp's reader (see [NewMeterProvider])
// already implements prometheus.Collector by way of its internal
// registry, so this is a thin promhttp wrapper.
func Handler() http.Handler {
	return promhttp.Handler()
}
