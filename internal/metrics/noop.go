package metrics

import (
	"time"

	"github.com/go-authgate/applink/internal/core"
)

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

// Token lifecycle - noop implementations
func (n *NoopMetrics) RecordTokenIssued(kind string, success bool)               {}
func (n *NoopMetrics) RecordTokenAuthorized(consentTime time.Duration)           {}
func (n *NoopMetrics) RecordTokenDenied()                                        {}
func (n *NoopMetrics) RecordTokenExchange(result string, duration time.Duration) {}
func (n *NoopMetrics) RecordTokenRenewal(success bool)                           {}
func (n *NoopMetrics) RecordTokenRevoked(kind, reason string)                    {}
func (n *NoopMetrics) RecordTokensExpired(count int64)                           {}

// Request authentication - noop implementations
func (n *NoopMetrics) RecordOAuthAuthentication(mode string, success bool, duration time.Duration) {
}
func (n *NoopMetrics) RecordNonceReplay()                {}
func (n *NoopMetrics) RecordCSRFExemption(reason string) {}

// Interactive login - noop implementations
func (n *NoopMetrics) RecordLogin(authSource string, success bool) {}
func (n *NoopMetrics) RecordLogout(sessionDuration time.Duration)  {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetActiveTokensCount(kind string, count int) {}
func (n *NoopMetrics) SetActiveImpersonations(count int64)         {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
