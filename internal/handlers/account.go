package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-gonic/gin"
)

// AccountHandler lets users review and revoke the access tokens they issued.
type AccountHandler struct {
	tokenService *services.TokenService
}

func NewAccountHandler(ts *services.TokenService) *AccountHandler {
	return &AccountHandler{tokenService: ts}
}

// ListTokens shows one page of the current user's access tokens.
func (h *AccountHandler) ListTokens(c *gin.Context) {
	user := middleware.GetSessionUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	tokens, pagination, err := h.tokenService.ListAccessTokens(c.Request.Context(), user.Username, page)
	if err != nil {
		log.Printf("[OAuth] Failed to list tokens for %s: %v", user.Username, err)
		renderError(c, http.StatusInternalServerError, "Internal Server Error",
			"Failed to retrieve your access tokens")
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.TokensPage(templates.TokensPageProps{
		BaseProps:   templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		NavbarProps: navbarProps(c, "tokens"),
		Tokens:      tokens,
		Pagination:  pagination,
		Success:     popFlash(c, flashSuccess),
		Error:       popFlash(c, flashError),
	}))
}

// RevokeToken revokes one of the current user's access tokens.
func (h *AccountHandler) RevokeToken(c *gin.Context) {
	user := middleware.GetSessionUser(c)

	err := h.tokenService.RevokeAccessToken(c.Request.Context(), user.Username, c.PostForm("token"))
	switch {
	case err == nil:
		addFlash(c, flashSuccess, "Access revoked")
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrNotTokenOwner):
		addFlash(c, flashError, "Token not found")
	default:
		log.Printf("[OAuth] Failed to revoke token for %s: %v", user.Username, err)
		renderError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to revoke token")
		return
	}

	c.Redirect(http.StatusFound, "/account/tokens")
}
