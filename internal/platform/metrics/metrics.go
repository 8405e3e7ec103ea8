package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics of the bridge.
type Metrics struct {
	Requests        *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
	// Websocket upgrades finish when the connection closes, so their
	// latency is connection lifetime.
	ConnectionDuration prometheus.Histogram
}

// New registers the metrics with reg, or the default registerer when nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_http_requests_total",
			Help: "Total number of HTTP requests, labeled by route and status",
		}, []string{"endpoint", "status"}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webshop_endpoint_latency_seconds",
			Help:    "Latency of plain HTTP endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ConnectionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "webshop_websocket_connection_seconds",
			Help:    "Lifetime of websocket connections in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 3600, 4 * 3600, 12 * 3600},
		}),
	}
}

// ObserveRequest records one finished request. Status 101 marks a websocket
// whose duration is its connection lifetime.
func (m *Metrics) ObserveRequest(endpoint string, status int, durationSeconds float64) {
	m.Requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	if status == 101 {
		m.ConnectionDuration.Observe(durationSeconds)
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
