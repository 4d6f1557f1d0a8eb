package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-gonic/gin"
)

// AuthorizationHandler serves the consent page where a logged-in user allows
// or denies a consumer's request token.
type AuthorizationHandler struct {
	authorizationService *services.AuthorizationService
	consumerService      *services.ConsumerService
	config               *config.Config
}

func NewAuthorizationHandler(
	as *services.AuthorizationService,
	cs *services.ConsumerService,
	cfg *config.Config,
) *AuthorizationHandler {
	return &AuthorizationHandler{
		authorizationService: as,
		consumerService:      cs,
		config:               cfg,
	}
}

// ShowAuthorizePage renders the consent page for ?oauth_token=.
// Requires the user to be logged in (enforced by RequireAuth middleware).
func (h *AuthorizationHandler) ShowAuthorizePage(c *gin.Context) {
	value := c.Query(oauth1.ParamToken)

	consent, err := h.authorizationService.PrepareConsent(c.Request.Context(), value)
	if err != nil {
		h.consentError(c, err)
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.ConsentPage(h.consentProps(c, consent, "")))
}

// HandleAuthorize processes the user's decision (POST).
// Requires the user to be logged in and a valid CSRF token.
func (h *AuthorizationHandler) HandleAuthorize(c *gin.Context) {
	value := c.PostForm(oauth1.ParamToken)
	user := middleware.GetSessionUser(c)

	if c.PostForm("action") != "approve" {
		h.deny(c, value, user)
		return
	}

	token, err := h.authorizationService.Approve(c.Request.Context(), value, user)
	if err != nil {
		h.decisionError(c, value, err)
		return
	}

	if redirect, ok := services.CallbackRedirect(token, false); ok {
		c.Redirect(http.StatusFound, redirect)
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.VerifierPage(templates.VerifierPageProps{
		NavbarProps:  navbarProps(c, ""),
		ConsumerName: h.consumerName(c, token),
		Verifier:     token.Verifier,
	}))
}

func (h *AuthorizationHandler) deny(c *gin.Context, value string, user *models.User) {
	token, err := h.authorizationService.Deny(c.Request.Context(), value, user)
	if err != nil {
		h.decisionError(c, value, err)
		return
	}

	if redirect, ok := services.CallbackRedirect(token, true); ok {
		c.Redirect(http.StatusFound, redirect)
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.DeniedPage(templates.DeniedPageProps{
		NavbarProps:  navbarProps(c, ""),
		ConsumerName: h.consumerName(c, token),
	}))
}

// decisionError shows form-level failures on the consent page when the
// token can still be presented, and an error page otherwise.
func (h *AuthorizationHandler) decisionError(c *gin.Context, value string, err error) {
	if !errors.Is(err, services.ErrAnonymousUser) {
		h.consentError(c, err)
		return
	}

	consent, perr := h.authorizationService.PrepareConsent(c.Request.Context(), value)
	if perr != nil {
		h.consentError(c, perr)
		return
	}
	templates.RenderTempl(c, http.StatusForbidden,
		templates.ConsentPage(h.consentProps(c, consent, err.Error())))
}

func (h *AuthorizationHandler) consentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		renderError(c, http.StatusBadRequest, "Invalid request",
			"The authorization request is invalid or has expired. Start again from the application.")
	case errors.Is(err, services.ErrTokenAlreadyAuthorized):
		renderError(c, http.StatusBadRequest, "Already authorized", err.Error())
	case errors.Is(err, services.ErrAnonymousUser):
		renderError(c, http.StatusForbidden, "Forbidden", err.Error())
	default:
		log.Printf("[OAuth] Consent failed: %v", err)
		renderError(c, http.StatusInternalServerError, "Internal Server Error",
			"The authorization request could not be processed.")
	}
}

func (h *AuthorizationHandler) consentProps(
	c *gin.Context,
	consent *services.ConsentRequest,
	formError string,
) templates.ConsentPageProps {
	var callbackHost string
	if !consent.Token.IsOutOfBand() {
		if u, err := url.Parse(consent.Token.CallbackURL); err == nil {
			callbackHost = u.Host
		}
	}

	return templates.ConsentPageProps{
		BaseProps:    templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		NavbarProps:  navbarProps(c, ""),
		ActionURL:    h.config.AuthorizeURL(),
		Token:        consent.Token.Value,
		ConsumerName: consent.Consumer.Name,
		ConsumerKey:  consent.Consumer.Key,
		CallbackHost: callbackHost,
		ExpiresAt:    consent.Token.ExpiresAt,
		Error:        formError,
	}
}

func (h *AuthorizationHandler) consumerName(c *gin.Context, token *models.Token) string {
	consumer, err := h.consumerService.GetConsumer(c.Request.Context(), token.ConsumerKey)
	if err != nil {
		return token.ConsumerKey
	}
	return consumer.Name
}
