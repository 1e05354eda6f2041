package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AddressesResolved *prometheus.CounterVec
	APIErrors         prometheus.Counter
	RequestSeconds    *prometheus.HistogramVec
	ActiveWorkers     prometheus.Gauge
	BatchSize         prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		AddressesResolved: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinpoint_addresses_processed_total",
			Help: "Total number of processed address resolutions.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinpoint_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pinpoint_active_workers",
			Help: "Current number of active workers resolving addresses.",
		}),
		BatchSize: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "pinpoint_batch_request_size",
			Help:    "Number of addresses sent per batch geocoding request.",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
	}
}
