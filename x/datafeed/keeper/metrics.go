package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DataFeedMetrics holds all Prometheus metrics for the datafeed module
type DataFeedMetrics struct {
	// Update metrics
	BeaconUpdates    *prometheus.CounterVec
	BeaconSetUpdates *prometheus.CounterVec
	BeaconSetSize    prometheus.Histogram

	// Read metrics
	Reads    *prometheus.CounterVec
	OevReads *prometheus.CounterVec

	// Proxy metrics
	ProxiesDeployed *prometheus.CounterVec
}

var (
	dataFeedMetricsOnce sync.Once
	dataFeedMetrics     *DataFeedMetrics
)

// NewDataFeedMetrics creates and registers datafeed metrics (singleton pattern)
func NewDataFeedMetrics() *DataFeedMetrics {
	dataFeedMetricsOnce.Do(func() {
		dataFeedMetrics = &DataFeedMetrics{
			BeaconUpdates: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "api3",
					Subsystem: "datafeed",
					Name:      "beacon_updates_total",
					Help:      "Signed beacon updates by outcome",
				},
				[]string{"status"},
			),
			BeaconSetUpdates: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "api3",
					Subsystem: "datafeed",
					Name:      "beacon_set_updates_total",
					Help:      "Beacon set aggregations by outcome",
				},
				[]string{"status"},
			),
			BeaconSetSize: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "api3",
					Subsystem: "datafeed",
					Name:      "beacon_set_size",
					Help:      "Number of beacons in applied beacon set updates",
					Buckets:   []float64{2, 3, 5, 7, 9, 13, 17, 21},
				},
			),
			Reads: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "api3",
					Subsystem: "datafeed",
					Name:      "reads_total",
					Help:      "Data feed reads by lookup kind and outcome",
				},
				[]string{"kind", "status"},
			),
			OevReads: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "api3",
					Subsystem: "datafeed",
					Name:      "oev_reads_total",
					Help:      "OEV reads by outcome",
				},
				[]string{"status"},
			),
			ProxiesDeployed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "api3",
					Subsystem: "datafeed",
					Name:      "proxies_deployed_total",
					Help:      "Proxies deployed by kind",
				},
				[]string{"kind"},
			),
		}
	})
	return dataFeedMetrics
}
