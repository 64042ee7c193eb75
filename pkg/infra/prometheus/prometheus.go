package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestline_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"method", "path", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nestline_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"method", "path"},
	)

	AdmissionRejections = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestline_admission_rejections_total",
			Help: "Requests rejected by the rate-limit ledger",
		},
		[]string{"reason"},
	)

	BlacklistedIdentifiers = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "nestline_blacklisted_identifiers",
			Help: "Identifiers currently under an active penalty",
		},
	)

	LiveSubscribers = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "nestline_live_subscribers",
			Help: "Connected live-update websocket subscribers",
		},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
