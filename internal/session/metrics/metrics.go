package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for session bridge operations.
type Metrics struct {
	ActiveConnections    prometheus.Gauge
	CredentialFetches    *prometheus.CounterVec
	CredentialFetchMs    prometheus.Histogram
	RefreshOutcomes      *prometheus.CounterVec
	StaleLogouts         *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	SubscriptionFailures *prometheus.CounterVec
}

// New registers and returns session metrics collectors on reg. A nil reg
// uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "webshop_session_active_connections",
			Help: "Current number of connected session bridges",
		}),
		CredentialFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_session_credential_fetches_total",
			Help: "Credential fetches by result (authenticated, onboarding, verify_email, failed, superseded)",
		}, []string{"result"}),
		CredentialFetchMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "webshop_session_credential_fetch_duration_ms",
			Help:    "Duration of credential fetches in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		RefreshOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_session_refresh_outcomes_total",
			Help: "Refresh scheduling outcomes (scheduled, immediate, abandoned)",
		}, []string{"outcome"}),
		StaleLogouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_session_stale_logouts_total",
			Help: "Sessions cleaned up without an explicit sign-out, by reason",
		}, []string{"reason"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_session_notifications_total",
			Help: "Notifications sent to the UI by type",
		}, []string{"type"}),
		SubscriptionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_session_subscription_failures_total",
			Help: "Live subscription failures by subscription",
		}, []string{"subscription"}),
	}
}

func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

func (m *Metrics) ObserveCredentialFetch(result string, durationMs float64) {
	m.CredentialFetches.WithLabelValues(result).Inc()
	m.CredentialFetchMs.Observe(durationMs)
}

func (m *Metrics) IncrementRefreshOutcome(outcome string) {
	m.RefreshOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementStaleLogout(reason string) {
	m.StaleLogouts.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementNotification(notificationType string) {
	m.Notifications.WithLabelValues(notificationType).Inc()
}

func (m *Metrics) IncrementSubscriptionFailure(subscription string) {
	m.SubscriptionFailures.WithLabelValues(subscription).Inc()
}
