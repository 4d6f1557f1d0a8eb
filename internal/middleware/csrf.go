package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey    = "csrf_token"
	csrfFormField   = "csrf_token"
	csrfHeaderField = "X-CSRF-Token"
)

// CSRF exemption reasons, as recorded in metrics.
const (
	ExemptTokenEndpoint = "token_endpoint"
	ExemptOAuth         = "oauth_authenticated"
	ExemptBuildTrigger  = "build_trigger"
)

// CSRFConfig lists the requests that skip CSRF validation.
type CSRFConfig struct {
	// TokenPaths are the request-token and access-token paths. They are
	// always exempt, matched exactly.
	TokenPaths []string
	// SessionPaths are path prefixes of pages that act for the session user,
	// such as the consent page. An OAuth signature never exempts them.
	SessionPaths []string
	// BuildPatterns are path.Match patterns of build-trigger URLs exempt
	// regardless of authentication.
	BuildPatterns []string
	Metrics       core.Recorder
}

// CSRFMiddleware provides CSRF protection for state-changing operations.
// Token endpoints, build triggers and OAuth-authenticated requests outside
// the session pages are exempt. It must run after OAuthFilter.
func CSRFMiddleware(cfg CSRFConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reason := csrfExemption(cfg, c); reason != "" {
			if isStateChanging(c.Request.Method) && cfg.Metrics != nil {
				cfg.Metrics.RecordCSRFExemption(reason)
			}
			c.Next()
			return
		}

		session := sessions.Default(c)

		// Generate token if not exists
		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			token = generateCSRFToken()
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				log.Printf("[CSRF] Failed to save token: %v", err)
				templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(
					templates.ErrorPageProps{Error: "Internal Server Error", Message: "Failed to save CSRF token."},
				))
				c.Abort()
				return
			}
		}

		// Make token available to templates
		c.Set(csrfTokenKey, token)

		if isStateChanging(c.Request.Method) {
			submitted := c.PostForm(csrfFormField)
			if submitted == "" {
				submitted = c.GetHeader(csrfHeaderField)
			}

			if submitted == "" || submitted != token {
				templates.RenderTempl(c, http.StatusForbidden, templates.ErrorPage(
					templates.ErrorPageProps{
						Error:   "Forbidden",
						Message: "CSRF token validation failed. Please refresh the page and try again.",
					},
				))
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

func csrfExemption(cfg CSRFConfig, c *gin.Context) string {
	p := c.Request.URL.Path
	switch {
	case slices.Contains(cfg.TokenPaths, p):
		return ExemptTokenEndpoint
	case OAuthAuthenticated(c) && !underAny(cfg.SessionPaths, p):
		return ExemptOAuth
	case matchesAny(cfg.BuildPatterns, p):
		return ExemptBuildTrigger
	}
	return ""
}

func matchesAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

func underAny(prefixes []string, p string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// generateCSRFToken generates a random CSRF token
func generateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate CSRF token: " + err.Error())
	}
	return base64.StdEncoding.EncodeToString(b)
}

// GetCSRFToken retrieves the CSRF token from the context
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}
