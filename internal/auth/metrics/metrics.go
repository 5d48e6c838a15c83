package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	Logins               *prometheus.CounterVec
	AuthFailures         *prometheus.CounterVec
	TokensIssued         *prometheus.CounterVec
	TokenValidations     *prometheus.CounterVec
	TwoFactorChallenges  prometheus.Counter
	NotificationFailures prometheus.Counter
	CleanupDeletedRows   *prometheus.CounterVec
	LoginDurationMs      prometheus.Histogram
}

// New registers and returns auth metrics collectors.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ssogate_logins_total",
			Help: "Total number of successful logins, by principal type",
		}, []string{"principal"}),
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ssogate_auth_failures_total",
			Help: "Total number of authentication failures, by operation",
		}, []string{"operation"}),
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ssogate_tokens_issued_total",
			Help: "Total number of persistent tokens issued, by principal type",
		}, []string{"principal"}),
		TokenValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ssogate_token_validations_total",
			Help: "Total number of token validation requests, by outcome",
		}, []string{"outcome"}),
		TwoFactorChallenges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ssogate_two_factor_challenges_total",
			Help: "Total number of two-factor pin challenges issued",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ssogate_notification_failures_total",
			Help: "Total number of login notification delivery failures",
		}),
		CleanupDeletedRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ssogate_cleanup_deleted_rows_total",
			Help: "Total number of rows removed by the cleanup worker, by table",
		}, []string{"table"}),
		LoginDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ssogate_login_duration_ms",
			Help:    "Duration of login operations in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

func (m *Metrics) IncrementLogins(principal string) {
	m.Logins.WithLabelValues(principal).Inc()
}

func (m *Metrics) IncrementAuthFailures(operation string) {
	m.AuthFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementTokensIssued(principal string) {
	m.TokensIssued.WithLabelValues(principal).Inc()
}

func (m *Metrics) IncrementTokenValidations(outcome string) {
	m.TokenValidations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTwoFactorChallenges() {
	m.TwoFactorChallenges.Inc()
}

func (m *Metrics) IncrementNotificationFailures() {
	m.NotificationFailures.Inc()
}

func (m *Metrics) IncrementCleanupDeletedRows(table string, count int) {
	m.CleanupDeletedRows.WithLabelValues(table).Add(float64(count))
}

func (m *Metrics) ObserveLoginDuration(durationMs float64) {
	m.LoginDurationMs.Observe(durationMs)
}
