// Package metrics provides the centralized Prometheus metrics reference
// for the fetcher. All metrics are defined in their respective packages
// (client, cache, pagination) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the fetcher.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - arcgis_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - arcgis_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - arcgis_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Cache Metrics (pkg/cache):
//   - arcgis_cache_hits_total{layer="redis"} (Counter): Response cache hits by layer
//   - arcgis_cache_misses_total (Counter): Response cache misses
//   - arcgis_cache_errors_total{operation} (Counter): Cache operation errors
//
// Fetch Metrics (pkg/pagination):
//   - arcgis_pages_fetched_total{mode} (Counter): Pages fetched by mode (concurrent, sequential)
//   - arcgis_fetch_duration_seconds{mode} (Histogram): Full fetch session duration by mode
//   - arcgis_fetch_aborts_total (Counter): Fetch sessions aborted by a page failure
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(arcgis_cache_hits_total[5m])) /
//   (sum(rate(arcgis_cache_hits_total[5m])) + sum(rate(arcgis_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(arcgis_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(arcgis_request_duration_seconds_bucket[5m]))
