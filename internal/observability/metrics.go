package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	DatasetLoaded prometheus.Gauge
	DatasetRows   prometheus.Gauge
	RowsDropped   prometheus.Counter

	// Query pipeline metrics.
	Queries            prometheus.Counter
	QueryDuration      prometheus.Histogram
	FilterMatchedRows  prometheus.Histogram
	ClustersFound      prometheus.Histogram
	ClusteringDuration prometheus.Histogram

	// Export and snapshot metrics.
	Exports            *prometheus.CounterVec // labels: format={csv,pdf}, outcome={success,error}
	SnapshotsPublished prometheus.Counter
	SnapshotErrors     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taxi_dashboard",
			Name:      "dataset_loaded",
			Help:      "1 when the trip dataset has been loaded, 0 otherwise.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taxi_dashboard",
			Name:      "dataset_rows",
			Help:      "Number of trip rows held in memory after load.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taxi_dashboard",
			Name:      "rows_dropped_total",
			Help:      "Total malformed rows dropped during dataset load.",
		}),
		Queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taxi_dashboard",
			Name:      "queries_total",
			Help:      "Total filter queries processed.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taxi_dashboard",
			Name:      "query_duration_seconds",
			Help:      "Duration of a complete filter-cluster-aggregate cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		FilterMatchedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taxi_dashboard",
			Name:      "filter_matched_rows",
			Help:      "Number of rows matching the filter criteria per query.",
			Buckets:   []float64{0, 10, 100, 1000, 10000, 50000, 150000},
		}),
		ClustersFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taxi_dashboard",
			Name:      "clusters_found",
			Help:      "Number of hotspot clusters detected per query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		ClusteringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taxi_dashboard",
			Name:      "clustering_duration_seconds",
			Help:      "Duration of density clustering per query.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taxi_dashboard",
			Name:      "exports_total",
			Help:      "Export requests by format and outcome.",
		}, []string{"format", "outcome"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taxi_dashboard",
			Name:      "snapshots_published_total",
			Help:      "Hotspot snapshots published to the sink topic.",
		}),
		SnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taxi_dashboard",
			Name:      "snapshot_errors_total",
			Help:      "Failed hotspot snapshot publishes.",
		}),
	}

	prometheus.MustRegister(
		m.DatasetLoaded,
		m.DatasetRows,
		m.RowsDropped,
		m.Queries,
		m.QueryDuration,
		m.FilterMatchedRows,
		m.ClustersFound,
		m.ClusteringDuration,
		m.Exports,
		m.SnapshotsPublished,
		m.SnapshotErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetLoaded:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "taxi_dashboard", Name: "dataset_loaded"}),
		DatasetRows:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "taxi_dashboard", Name: "dataset_rows"}),
		RowsDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "taxi_dashboard", Name: "rows_dropped_total"}),
		Queries:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "taxi_dashboard", Name: "queries_total"}),
		QueryDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "taxi_dashboard", Name: "query_duration_seconds"}),
		FilterMatchedRows:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "taxi_dashboard", Name: "filter_matched_rows"}),
		ClustersFound:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "taxi_dashboard", Name: "clusters_found"}),
		ClusteringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "taxi_dashboard", Name: "clustering_duration_seconds"}),
		Exports:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "taxi_dashboard", Name: "exports_total"}, []string{"format", "outcome"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "taxi_dashboard", Name: "snapshots_published_total"}),
		SnapshotErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "taxi_dashboard", Name: "snapshot_errors_total"}),
	}
}
