package metrics

import "time"

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

func outcome(success bool, failure string) string {
	if success {
		return resultSuccess
	}
	return failure
}

// RecordTokenIssued records request or access token issuance
func (m *Metrics) RecordTokenIssued(kind string, success bool) {
	m.TokensIssuedTotal.WithLabelValues(kind, outcome(success, resultError)).Inc()
	if success {
		m.TokensActive.WithLabelValues(kind).Inc()
	}
}

// RecordTokenAuthorized records user approval of a request token
func (m *Metrics) RecordTokenAuthorized(consentTime time.Duration) {
	m.TokensAuthorizedTotal.Inc()
	m.ConsentDuration.Observe(consentTime.Seconds())
}

func (m *Metrics) RecordTokenDenied() {
	m.TokensDeniedTotal.Inc()
}

// RecordTokenExchange records a request token exchange attempt
func (m *Metrics) RecordTokenExchange(result string, duration time.Duration) {
	m.TokenExchangeTotal.WithLabelValues(result).Inc()
	m.TokenExchangeDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordTokenRenewal(success bool) {
	m.TokenRenewalsTotal.WithLabelValues(outcome(success, resultError)).Inc()
}

// RecordTokenRevoked records token removal
func (m *Metrics) RecordTokenRevoked(kind, reason string) {
	m.TokensRevokedTotal.WithLabelValues(kind, reason).Inc()
	m.TokensActive.WithLabelValues(kind).Dec()
}

func (m *Metrics) RecordTokensExpired(count int64) {
	m.TokensExpiredTotal.Add(float64(count))
}

// RecordOAuthAuthentication records a signed request verification
func (m *Metrics) RecordOAuthAuthentication(mode string, success bool, duration time.Duration) {
	m.OAuthAuthenticationTotal.WithLabelValues(mode, outcome(success, resultFailure)).Inc()
	m.OAuthAuthenticationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordNonceReplay() {
	m.NonceReplaysTotal.Inc()
}

func (m *Metrics) RecordCSRFExemption(reason string) {
	m.CSRFExemptionsTotal.WithLabelValues(reason).Inc()
}

// RecordLogin records login attempt
func (m *Metrics) RecordLogin(authSource string, success bool) {
	m.AuthLoginTotal.WithLabelValues(authSource, outcome(success, resultFailure)).Inc()
	if success {
		m.SessionsActive.Inc()
	}
}

// RecordLogout records logout
func (m *Metrics) RecordLogout(sessionDuration time.Duration) {
	m.AuthLogoutTotal.Inc()
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(sessionDuration.Seconds())
}

// SetActiveTokensCount sets the current count of active tokens (for periodic updates)
func (m *Metrics) SetActiveTokensCount(kind string, count int) {
	m.TokensActive.WithLabelValues(kind).Set(float64(count))
}

func (m *Metrics) SetActiveImpersonations(count int64) {
	m.ImpersonationsActive.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
