// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successCounter    prometheus.Counter
	failureCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics returns the process-wide transaction metrics. Registration with
// the default prometheus registry happens once; every manager shares the
// same collectors.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		successCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dlmmvault_tx_success_total",
			Help: "Total number of successful vault transactions",
		})
		failureCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dlmmvault_tx_failure_total",
			Help: "Total number of failed vault transactions",
		})
		durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dlmmvault_tx_duration_seconds",
			Help:    "Vault transaction duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 0.5, 12),
		})

		prometheus.MustRegister(successCounter, failureCounter, durationHistogram)

		sharedMetrics = &Metrics{
			successCounter:    successCounter,
			failureCounter:    failureCounter,
			durationHistogram: durationHistogram,
		}
	})
	return sharedMetrics
}

func (tm *Metrics) TrackTransaction(start time.Time) {
	tm.durationHistogram.Observe(time.Since(start).Seconds())
}
