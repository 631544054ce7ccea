// Package metrics provides Prometheus metrics for a sync run.
//
// Key metrics:
//   - Transfers by outcome, bytes received and transfer latency
//   - Active transfers against the concurrency ceiling
//   - Price rows updated, inserted and skipped
//
// A run is a batch job, so metrics are pushed to a Pushgateway at the end
// instead of being scraped.
package metrics
