package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "quotesync"

// Sync holds the collectors of one sync run on a private registry.
type Sync struct {
	Registry *prometheus.Registry

	Transfers        *prometheus.CounterVec // outcome
	BytesReceived    prometheus.Counter
	TransferDuration prometheus.Histogram
	ActiveTransfers  prometheus.Gauge

	RowsWritten *prometheus.CounterVec // action: update, insert
	WriteErrors prometheus.Counter

	LastSuccess prometheus.Gauge
}

// New creates and registers the run collectors.
func New() *Sync {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Sync{
		Registry: reg,
		Transfers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Quote transfers by outcome.",
		}, []string{"outcome"}),
		BytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Response body bytes received from the quote service.",
		}),
		TransferDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Time from transfer start to retirement.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ActiveTransfers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_transfers",
			Help:      "Transfers currently in flight.",
		}),
		RowsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_rows_written_total",
			Help:      "Price rows written by action.",
		}, []string{"action"}),
		WriteErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_write_errors_total",
			Help:      "Price records skipped because a statement failed.",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

// Push sends all collected metrics to the Pushgateway at url under job,
// grouped by instance.
func (m *Sync) Push(ctx context.Context, url, job, instance string) error {
	p := push.New(url, job).Gatherer(m.Registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
