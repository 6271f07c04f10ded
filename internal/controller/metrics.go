package controller

import "github.com/prometheus/client_golang/prometheus"

var (
	syncUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "certsync",
			Name:      "up",
			Help:      "Whether the cert-sync controller is running (1) or not (0)",
		},
	)

	syncTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "certsync",
			Name:      "sync_total",
			Help:      "Total number of per-certificate sync attempts",
		},
	)

	syncSuccessTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "certsync",
			Name:      "sync_success_total",
			Help:      "Total number of successful sync attempts, including unchanged short-circuits",
		},
	)

	syncFailureTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "certsync",
			Name:      "sync_failure_total",
			Help:      "Total number of failed sync attempts",
		},
	)

	lastSyncTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "certsync",
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix timestamp of the most recently completed reconcile tick",
		},
	)
)

// Registry holds the controller's metric series. A dedicated registry keeps
// the scrape surface to exactly what the reconcile loop publishes.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		syncUp,
		syncTotal,
		syncSuccessTotal,
		syncFailureTotal,
		lastSyncTimestamp,
	)
}
