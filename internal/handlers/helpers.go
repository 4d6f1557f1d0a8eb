package handlers

import (
	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// navbarProps describes the logged-in user for the page chrome.
func navbarProps(c *gin.Context, active string) templates.NavbarProps {
	user := middleware.GetSessionUser(c)
	if user == nil {
		return templates.NavbarProps{}
	}
	return templates.NavbarProps{
		Username:   user.Username,
		IsAdmin:    user.IsAdmin(),
		ActiveLink: active,
	}
}

func renderError(c *gin.Context, status int, title, message string) {
	templates.RenderTempl(c, status, templates.ErrorPage(templates.ErrorPageProps{
		BaseProps: templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		Error:     title,
		Message:   message,
	}))
}

// popFlash returns the first pending flash message of the session.
func popFlash(c *gin.Context, key string) string {
	session := sessions.Default(c)
	flashes := session.Flashes(key)
	if len(flashes) == 0 {
		return ""
	}
	_ = session.Save()
	msg, _ := flashes[0].(string)
	return msg
}

func addFlash(c *gin.Context, key, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, key)
	_ = session.Save()
}

const (
	flashSuccess = "success"
	flashError   = "error"
)
