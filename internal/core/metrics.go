package core

import (
	"context"
	"time"

	"github.com/go-authgate/applink/internal/models"
)

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Token lifecycle
	RecordTokenIssued(kind string, success bool)
	RecordTokenAuthorized(consentTime time.Duration)
	RecordTokenDenied()
	RecordTokenExchange(result string, duration time.Duration)
	RecordTokenRenewal(success bool)
	RecordTokenRevoked(kind, reason string)
	RecordTokensExpired(count int64)

	// Request authentication
	RecordOAuthAuthentication(mode string, success bool, duration time.Duration)
	RecordNonceReplay()
	RecordCSRFExemption(reason string)

	// Interactive login
	RecordLogin(authSource string, success bool)
	RecordLogout(sessionDuration time.Duration)

	// Gauge Setters (for periodic updates)
	SetActiveTokensCount(kind string, count int)
	SetActiveImpersonations(count int64)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the store operations needed by CacheWrapper.
type MetricsStore interface {
	CountActiveTokens(ctx context.Context, kind models.TokenKind) (int64, error)
}
