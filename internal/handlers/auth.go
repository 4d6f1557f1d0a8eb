package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/templates"
	"github.com/go-authgate/applink/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const defaultLandingPage = "/account/tokens"

type AuthHandler struct {
	userService *services.UserService
	baseURL     string
	metrics     core.Recorder
}

func NewAuthHandler(us *services.UserService, baseURL string, m core.Recorder) *AuthHandler {
	return &AuthHandler{
		userService: us,
		baseURL:     baseURL,
		metrics:     m,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(c *gin.Context) {
	redirectTo := c.Query("redirect")
	if !util.IsRedirectSafe(redirectTo, h.baseURL) {
		redirectTo = ""
	}

	if middleware.GetSessionUser(c) != nil {
		c.Redirect(http.StatusFound, landingPage(redirectTo))
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.LoginPage(templates.LoginPageProps{
		BaseProps: templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		Redirect:  redirectTo,
		Error:     c.Query("error"),
	}))
}

// Login handles the login form submission
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	redirectTo := c.PostForm("redirect")
	if !util.IsRedirectSafe(redirectTo, h.baseURL) {
		redirectTo = ""
	}

	user, err := h.userService.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		templates.RenderTempl(c, http.StatusUnauthorized, templates.LoginPage(templates.LoginPageProps{
			BaseProps: templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
			Error:     "Invalid username or password",
			Redirect:  redirectTo,
		}))
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	session.Set(middleware.SessionUsername, user.Username)
	session.Set(middleware.SessionLoginAt, time.Now().Unix())
	if err := session.Save(); err != nil {
		log.Printf("[Auth] Failed to save session for %s: %v", user.Username, err)
		templates.RenderTempl(c, http.StatusInternalServerError, templates.LoginPage(templates.LoginPageProps{
			BaseProps: templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
			Error:     "Failed to create session",
		}))
		return
	}
	c.Redirect(http.StatusFound, landingPage(redirectTo))
}

// Logout clears the session and redirects to login
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if loginAt, ok := session.Get(middleware.SessionLoginAt).(int64); ok {
		h.metrics.RecordLogout(time.Since(time.Unix(loginAt, 0)))
	}
	session.Clear()
	if err := session.Save(); err != nil {
		renderError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to save session")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func landingPage(redirectTo string) string {
	if redirectTo != "" {
		return redirectTo
	}
	return defaultLandingPage
}
