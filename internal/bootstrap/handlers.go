package bootstrap

import (
	"net/url"

	"github.com/go-authgate/applink/internal/handlers"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/util"
)

// handlerSet holds all HTTP handlers and required services
type handlerSet struct {
	auth          *handlers.AuthHandler
	token         *handlers.TokenHandler
	authorization *handlers.AuthorizationHandler
	account       *handlers.AccountHandler
	consumer      *handlers.ConsumerHandler
	audit         *handlers.AuditHandler
	resource      *handlers.ResourceHandler
	userService   *services.UserService
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(app *Application, publicURL *url.URL) handlerSet {
	return handlerSet{
		auth: handlers.NewAuthHandler(
			app.UserService,
			app.Config.BaseURL,
			app.MetricsRecorder,
		),
		token: handlers.NewTokenHandler(
			app.TokenService,
			app.AuthenticatorService,
			app.Config,
			publicURL,
		),
		authorization: handlers.NewAuthorizationHandler(
			app.AuthorizationService,
			app.ConsumerService,
			app.Config,
		),
		account:     handlers.NewAccountHandler(app.TokenService),
		consumer:    handlers.NewConsumerHandler(app.ConsumerService),
		audit:       handlers.NewAuditHandler(app.AuditService),
		resource:    handlers.NewResourceHandler(app.AuditService, util.SystemClock{}),
		userService: app.UserService,
	}
}
