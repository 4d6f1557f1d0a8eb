package metrics

import (
	"sync"

	"github.com/go-authgate/applink/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Token lifecycle
	TokensIssuedTotal     *prometheus.CounterVec
	TokensAuthorizedTotal prometheus.Counter
	TokensDeniedTotal     prometheus.Counter
	ConsentDuration       prometheus.Histogram
	TokenExchangeTotal    *prometheus.CounterVec
	TokenExchangeDuration prometheus.Histogram
	TokenRenewalsTotal    *prometheus.CounterVec
	TokensRevokedTotal    *prometheus.CounterVec
	TokensExpiredTotal    prometheus.Counter
	TokensActive          *prometheus.GaugeVec

	// Request authentication
	OAuthAuthenticationTotal    *prometheus.CounterVec
	OAuthAuthenticationDuration *prometheus.HistogramVec
	NonceReplaysTotal           prometheus.Counter
	CSRFExemptionsTotal         *prometheus.CounterVec
	ImpersonationsActive        prometheus.Gauge

	// Interactive login
	AuthLoginTotal  *prometheus.CounterVec
	AuthLogoutTotal prometheus.Counter
	SessionsActive  prometheus.Gauge
	SessionDuration prometheus.Histogram

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		TokensIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth1_tokens_issued_total",
				Help: "Total number of OAuth 1.0a tokens issued",
			},
			[]string{"token_type", "result"}, // token_type: request, access; result: success, error
		),
		TokensAuthorizedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth1_request_tokens_authorized_total",
				Help: "Total number of request tokens approved by users",
			},
		),
		TokensDeniedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth1_request_tokens_denied_total",
				Help: "Total number of request tokens refused by users",
			},
		),
		ConsentDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oauth1_consent_duration_seconds",
				Help:    "Time between request token issue and user approval",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		TokenExchangeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth1_token_exchange_total",
				Help: "Total number of request token to access token exchanges",
			},
			[]string{"result"}, // success, invalid_token, invalid_verifier, not_authorized, error
		),
		TokenExchangeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oauth1_token_exchange_duration_seconds",
				Help:    "Time taken to exchange a request token",
				Buckets: prometheus.DefBuckets,
			},
		),
		TokenRenewalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth1_token_renewals_total",
				Help: "Total number of access token renewals",
			},
			[]string{"result"}, // success, error
		),
		TokensRevokedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth1_tokens_revoked_total",
				Help: "Total number of tokens revoked",
			},
			[]string{"token_type", "reason"}, // reason: user_request, consumer_removed, exchanged, renewed
		),
		TokensExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth1_tokens_expired_total",
				Help: "Total number of tokens removed by the expiry sweep",
			},
		),
		TokensActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oauth1_tokens_active",
				Help: "Current number of unexpired tokens",
			},
			[]string{"token_type"},
		),

		OAuthAuthenticationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth1_request_authentication_total",
				Help: "Total number of signed request authentication attempts",
			},
			[]string{"mode", "result"}, // mode: 2lo, 3lo; result: success, failure
		),
		OAuthAuthenticationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oauth1_request_authentication_duration_seconds",
				Help:    "Time taken to verify a signed request",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		NonceReplaysTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth1_nonce_replays_total",
				Help: "Total number of requests rejected for a reused nonce",
			},
		),
		CSRFExemptionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csrf_exemptions_total",
				Help: "Total number of requests that bypassed CSRF protection",
			},
			[]string{"reason"}, // token_endpoint, oauth_authenticated, build_trigger
		),
		ImpersonationsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "oauth1_impersonations_active",
				Help: "Current number of requests running under a consumer-granted identity",
			},
		),

		AuthLoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"auth_source", "result"},
		),
		AuthLogoutTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_logout_total",
				Help: "Total number of logouts",
			},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessions_active",
				Help: "Current number of active sessions",
			},
		),
		SessionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "session_duration_seconds",
				Help: "Duration of user sessions",
				Buckets: []float64{
					60,
					300,
					600,
					1800,
					3600,
					7200,
					14400,
					28800,
				}, // 1m, 5m, 10m, 30m, 1h, 2h, 4h, 8h
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"}, // count_request_tokens, count_access_tokens, sweep_tokens
		),
	}
}
