// Package metrics provides centralized Prometheus metrics access for market-radar.
// All metrics are defined in their respective packages (client, pagination,
// ratelimit, vacancy, export) to maintain modularity and avoid circular dependencies.
//
// A fetch is a short-lived batch run, so nothing scrapes an endpoint; the CLI
// dumps the registry to a node_exporter textfile at the end of the run instead.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by market-radar.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source WriteTextfile reads from.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format.
func WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - hh_requests_total{endpoint, status} (Counter): Requests by endpoint template and HTTP status
//   - hh_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint template
//   - hh_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, malformed)
//
// Retry Metrics (pkg/client):
//   - hh_retries_total{error_class} (Counter): Retry attempts by error class
//   - hh_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - hh_retry_exhausted_total{error_class} (Counter): Requests that exhausted max attempts
//
// Pacing Metrics (pkg/ratelimit, pkg/pagination):
//   - hh_pacer_waits_total (Counter): Pauses taken between search pages
//   - hh_pacer_wait_seconds (Histogram): Time spent in those pauses
//   - hh_pages_fetched_total (Counter): Search pages fetched
//
// Vacancy Metrics (pkg/vacancy, pkg/export):
//   - hh_vacancies_fetched_total (Counter): Records built from vacancy details
//   - hh_vacancies_skipped_total{reason} (Counter): Listed vacancies skipped (missing_id, duplicate, not_found)
//   - hh_export_rows_total (Counter): CSV data rows written
//
// Example Prometheus Queries:
//
//   # Retry pressure per class
//   sum by (error_class) (hh_retries_total)
//
//   # Vacancies lost between listing and detail
//   hh_vacancies_skipped_total{reason="not_found"}
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(hh_request_duration_seconds_bucket[5m]))
