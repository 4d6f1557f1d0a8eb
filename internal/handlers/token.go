package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/services"

	"github.com/gin-gonic/gin"
)

// Parameters a token request must carry, for oauth_parameters_absent.
var (
	requestTokenParams = []string{
		oauth1.ParamConsumerKey,
		oauth1.ParamSignatureMethod,
		oauth1.ParamSignature,
		oauth1.ParamTimestamp,
		oauth1.ParamNonce,
	}
	accessTokenParams = append([]string{oauth1.ParamToken}, requestTokenParams...)
)

// TokenHandler serves the request-token and access-token endpoints. Responses
// are form-encoded; failures carry oauth_problem and oauth_problem_advice.
type TokenHandler struct {
	tokenService  *services.TokenService
	authenticator *services.AuthenticatorService
	config        *config.Config
	publicURL     *url.URL
}

func NewTokenHandler(
	ts *services.TokenService,
	as *services.AuthenticatorService,
	cfg *config.Config,
	publicURL *url.URL,
) *TokenHandler {
	return &TokenHandler{
		tokenService:  ts,
		authenticator: as,
		config:        cfg,
		publicURL:     publicURL,
	}
}

// RequestToken issues an unauthorized request token to a consumer that
// signed with its own credentials.
//
//	@Summary		Obtain a request token
//	@Description	Issue an unauthorized request token to a signed consumer (RFC 5849 section 2.1). Parameters may arrive in the Authorization header, the form body or the query string.
//	@Tags			OAuth
//	@Accept			x-www-form-urlencoded
//	@Produce		x-www-form-urlencoded
//	@Param			Authorization			header		string	false	"OAuth protocol parameters"
//	@Param			oauth_consumer_key		formData	string	true	"Consumer key"
//	@Param			oauth_signature_method	formData	string	true	"HMAC-SHA1, RSA-SHA1 or PLAINTEXT (https only)"
//	@Param			oauth_signature			formData	string	true	"Request signature"
//	@Param			oauth_timestamp			formData	string	false	"Seconds since the epoch (not required for PLAINTEXT)"
//	@Param			oauth_nonce				formData	string	false	"Unique per consumer (not required for PLAINTEXT)"
//	@Param			oauth_callback			formData	string	true	"Absolute callback URL or oob"
//	@Success		200						{string}	string	"oauth_token, oauth_token_secret and oauth_callback_confirmed=true"
//	@Failure		400						{string}	string	"oauth_problem=parameter_absent, parameter_rejected or token_rejected"
//	@Failure		401						{string}	string	"oauth_problem=signature_invalid"
//	@Failure		429						{string}	string	"oauth_problem=rate_limited"
//	@Failure		500						{string}	string	"Internal server error"
//	@Router			/bitbucket/oauth/request-token [post]
func (h *TokenHandler) RequestToken(c *gin.Context) {
	req, ok := h.parse(c)
	if !ok {
		return
	}

	consumer, err := h.authenticator.AuthenticateConsumer(c.Request.Context(), req)
	if err != nil {
		h.authenticationError(c, req, requestTokenParams, err)
		return
	}

	token, err := h.tokenService.IssueRequestToken(
		c.Request.Context(),
		consumer,
		req.Params.Get(oauth1.ParamCallback),
	)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCallback) {
			h.problem(c, http.StatusBadRequest, oauth1.ProblemParameterRejected, err.Error(),
				oauth1.ParamParametersRejected, oauth1.ParamCallback)
			return
		}
		h.serverError(c, "issue request token", err)
		return
	}

	h.respond(c, url.Values{
		oauth1.ParamToken:             {token.Value},
		oauth1.ParamTokenSecret:       {token.Secret},
		oauth1.ParamCallbackConfirmed: {"true"},
	})
}

// AccessToken exchanges an authorized request token and its verifier for an
// access token. With oauth_session_handle it renews an expired access token
// instead.
//
//	@Summary		Exchange or renew an access token
//	@Description	Trade an authorized request token and its verifier for an access token (RFC 5849 section 2.3). With oauth_session_handle, renew an expired access token of the same session.
//	@Tags			OAuth
//	@Accept			x-www-form-urlencoded
//	@Produce		x-www-form-urlencoded
//	@Param			Authorization			header		string	false	"OAuth protocol parameters"
//	@Param			oauth_consumer_key		formData	string	true	"Consumer key"
//	@Param			oauth_token				formData	string	true	"Authorized request token, or the expired access token when renewing"
//	@Param			oauth_signature_method	formData	string	true	"HMAC-SHA1, RSA-SHA1 or PLAINTEXT (https only)"
//	@Param			oauth_signature			formData	string	true	"Request signature"
//	@Param			oauth_verifier			formData	string	false	"Verifier shown to the user (required unless renewing)"
//	@Param			oauth_session_handle	formData	string	false	"Session handle of the access token to renew"
//	@Success		200						{string}	string	"oauth_token, oauth_token_secret, oauth_session_handle, oauth_expires_in and oauth_authorization_expires_in"
//	@Failure		400						{string}	string	"oauth_problem=parameter_absent, token_rejected, verifier_invalid or permission_unknown"
//	@Failure		401						{string}	string	"oauth_problem=signature_invalid"
//	@Failure		429						{string}	string	"oauth_problem=rate_limited"
//	@Failure		500						{string}	string	"Internal server error"
//	@Router			/bitbucket/oauth/access-token [post]
func (h *TokenHandler) AccessToken(c *gin.Context) {
	req, ok := h.parse(c)
	if !ok {
		return
	}

	consumer, token, err := h.authenticator.AuthenticateExchange(c.Request.Context(), req)
	if err != nil {
		h.authenticationError(c, req, accessTokenParams, err)
		return
	}

	var access *models.Token
	if handle, renewal := req.Params.Lookup(oauth1.ParamSessionHandle); renewal {
		access, err = h.tokenService.RenewAccessToken(c.Request.Context(), consumer.Key, token.Value, handle)
	} else {
		access, err = h.tokenService.ExchangeRequestToken(
			c.Request.Context(),
			consumer.Key,
			token.Value,
			req.Params.Get(oauth1.ParamVerifier),
		)
	}
	if err != nil {
		h.exchangeError(c, err)
		return
	}

	expiresIn, authorizationExpiresIn := h.tokenService.AccessTokenResponseTTLs(access)
	h.respond(c, url.Values{
		oauth1.ParamToken:                  {access.Value},
		oauth1.ParamTokenSecret:            {access.Secret},
		oauth1.ParamSessionHandle:          {access.SessionHandle},
		oauth1.ParamExpiresIn:              {strconv.FormatInt(expiresIn, 10)},
		oauth1.ParamAuthorizationExpiresIn: {strconv.FormatInt(authorizationExpiresIn, 10)},
	})
}

func (h *TokenHandler) parse(c *gin.Context) (*oauth1.Request, bool) {
	req, err := oauth1.ParseRequest(c.Request, h.publicURL)
	if err != nil {
		h.problem(c, http.StatusBadRequest, oauth1.ProblemParameterRejected, "malformed OAuth parameters")
		return nil, false
	}
	return req, true
}

// authenticationError reports a rejected signature with one generic problem,
// and a missing parameter by name.
func (h *TokenHandler) authenticationError(
	c *gin.Context,
	req *oauth1.Request,
	required []string,
	err error,
) {
	switch {
	case errors.Is(err, services.ErrParameterAbsent):
		h.problem(c, http.StatusBadRequest, oauth1.ProblemParameterAbsent, "",
			oauth1.ParamParametersAbsent, strings.Join(absent(req, required), "&"))
	case errors.Is(err, services.ErrAuthenticationFailed):
		c.Header("WWW-Authenticate", oauth1.Challenge(h.config.OAuthRealm))
		h.problem(c, http.StatusUnauthorized, oauth1.ProblemSignatureInvalid, err.Error())
	case errors.Is(err, services.ErrInvalidToken):
		h.problem(c, http.StatusBadRequest, oauth1.ProblemTokenRejected, err.Error())
	default:
		h.serverError(c, "authenticate token request", err)
	}
}

func (h *TokenHandler) exchangeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		h.problem(c, http.StatusBadRequest, oauth1.ProblemTokenRejected, err.Error())
	case errors.Is(err, services.ErrInvalidVerifier):
		h.problem(c, http.StatusBadRequest, oauth1.ProblemVerifierInvalid, err.Error())
	case errors.Is(err, services.ErrTokenNotAuthorized):
		h.problem(c, http.StatusBadRequest, oauth1.ProblemPermissionUnknown, err.Error())
	default:
		h.serverError(c, "exchange token", err)
	}
}

func (h *TokenHandler) respond(c *gin.Context, values url.Values) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, oauth1.ContentTypeFormURLEncoded, []byte(values.Encode()))
}

func (h *TokenHandler) problem(c *gin.Context, status int, problem, advice string, extra ...string) {
	c.Header("Cache-Control", "no-store")
	c.Data(status, oauth1.ContentTypeFormURLEncoded, []byte(oauth1.ProblemBody(problem, advice, extra...)))
}

func (h *TokenHandler) serverError(c *gin.Context, op string, err error) {
	log.Printf("[OAuth] Failed to %s: %v", op, err)
	c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("internal server error"))
}

func absent(req *oauth1.Request, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := req.Params.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
