// Package metrics exposes the quote manager's business metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-manager/internal/ports"
)

const namespace = "quote_manager"

// Collector implements ports.QuoteMetrics on Prometheus instruments.
type Collector struct {
	stored       prometheus.Gauge
	syncRuns     *prometheus.CounterVec
	syncDuration prometheus.Histogram
	submissions  *prometheus.CounterVec
}

var _ ports.QuoteMetrics = (*Collector)(nil)

// NewCollector creates the instruments and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the /-/metrics endpoint.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quotes_stored",
			Help:      "Number of quotes currently held by the repository.",
		}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_sync_runs_total",
			Help:      "Sync runs against the quote server by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_sync_duration_seconds",
			Help:      "Wall time of one sync run, fetch and merge included.",
			Buckets:   prometheus.DefBuckets,
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_submissions_total",
			Help:      "Attempts to post a new quote to the quote server by result.",
		}, []string{"result"}),
	}

	for _, col := range []prometheus.Collector{c.stored, c.syncRuns, c.syncDuration, c.submissions} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	// Pre-create both label values so the series exist before the first run.
	for _, outcome := range []string{ports.OutcomeSuccess, ports.OutcomeFailure} {
		c.syncRuns.WithLabelValues(outcome)
		c.submissions.WithLabelValues(outcome)
	}

	return c, nil
}

func (c *Collector) SyncCompleted(outcome string, duration time.Duration) {
	c.syncRuns.WithLabelValues(outcome).Inc()
	c.syncDuration.Observe(duration.Seconds())
}

func (c *Collector) SubmissionCompleted(outcome string) {
	c.submissions.WithLabelValues(outcome).Inc()
}

func (c *Collector) QuotesStored(n int) {
	c.stored.Set(float64(n))
}
