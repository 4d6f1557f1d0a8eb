package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authgate/applink/internal/auth"
	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/util"
)

// userCacheTTL bounds how long a renamed or deleted user can still be
// resolved by impersonation
const userCacheTTL = 5 * time.Minute

// initializeServices creates all business logic services
func (app *Application) initializeServices() {
	clock := util.SystemClock{}
	random := util.CryptoRandomizer{}

	app.UserService = services.NewUserService(
		app.DB,
		auth.NewLocalAuthProvider(app.DB),
		app.AuditService,
		app.MetricsRecorder,
		nil,
		userCacheTTL,
	)
	app.TokenService = services.NewTokenService(
		app.TokenStore,
		app.DB,
		random,
		clock,
		app.Config,
		app.AuditService,
		app.MetricsRecorder,
	)
	app.AuthorizationService = services.NewAuthorizationService(
		app.TokenStore,
		app.DB,
		random,
		clock,
		app.AuditService,
		app.MetricsRecorder,
	)
	app.AuthenticatorService = services.NewAuthenticatorService(
		app.TokenStore,
		app.DB,
		app.NonceCache,
		clock,
		app.Config,
		app.AuditService,
		app.MetricsRecorder,
		app.Logger,
	)
	app.ConsumerService = services.NewConsumerService(app.DB, app.TokenService, app.AuditService)

	app.Impersonator = services.NewSessionImpersonator(app.UserService, app.MetricsRecorder)
	app.TrustedAuthorizer = services.NewTrustedAuthorizer(app.Impersonator)
}

// seedConsumer registers the consumer named by OAUTH_CONSUMER_* settings
func seedConsumer(ctx context.Context, cfg *config.Config, cs *services.ConsumerService) error {
	if err := cs.SeedFromConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to register configured consumer: %w", err)
	}
	return nil
}
