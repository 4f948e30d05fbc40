package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "epw_viewer"

// Metrics holds the Prometheus counters, histograms, and gauges for the viewer.
type Metrics struct {
	// Decoding metrics.
	FilesDecoded   prometheus.Counter
	RecordsDecoded prometheus.Counter
	DecodeErrors   *prometheus.CounterVec // labels: kind={header,record,field,sequence,empty,io}
	DecodeDuration prometheus.Histogram

	// Loaded-file store metrics.
	StoreLookups *prometheus.CounterVec // labels: result={hit,miss}
	StoreEntries prometheus.Gauge

	// Derived table and view metrics.
	TableRequests *prometheus.CounterVec   // labels: view={table,pivot,range,daily,publish}, outcome={success,error}
	TableDuration *prometheus.HistogramVec // labels: view
	TableRows     prometheus.Histogram

	// Publishing metrics.
	MessagesProduced prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishBatchSize prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_decoded_total",
			Help:      "Total EPW files decoded successfully.",
		}),
		RecordsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "Total data records decoded across all files.",
		}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "EPW decode failures by error kind.",
		}, []string{"kind"}),
		DecodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Duration of a complete EPW decode.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		StoreLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_lookups_total",
			Help:      "Loaded-file store lookups by result.",
		}, []string{"result"}),
		StoreEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_entries",
			Help:      "Number of decoded files held in memory.",
		}),
		TableRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_requests_total",
			Help:      "Derived table and view requests by view and outcome.",
		}, []string{"view", "outcome"}),
		TableDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_duration_seconds",
			Help:      "Time to build a derived table or view.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"view"}),
		TableRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows per derived table.",
			Buckets:   []float64{0, 24, 168, 744, 2208, 4416, 8784, 35136},
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total derived rows written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed batch writes to the sink topic.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of messages per batch written to Kafka.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when station geocoding is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesDecoded,
		m.RecordsDecoded,
		m.DecodeErrors,
		m.DecodeDuration,
		m.StoreLookups,
		m.StoreEntries,
		m.TableRequests,
		m.TableDuration,
		m.TableRows,
		m.MessagesProduced,
		m.PublishErrors,
		m.PublishBatchSize,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
