package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/templates"

	"github.com/gin-gonic/gin"
)

// ConsumerHandler is the admin UI for consumer registrations.
type ConsumerHandler struct {
	consumerService *services.ConsumerService
}

func NewConsumerHandler(cs *services.ConsumerService) *ConsumerHandler {
	return &ConsumerHandler{consumerService: cs}
}

// ShowConsumersPage lists every registered consumer.
func (h *ConsumerHandler) ShowConsumersPage(c *gin.Context) {
	consumers, err := h.consumerService.ListConsumers(c.Request.Context())
	if err != nil {
		log.Printf("[OAuth] Failed to list consumers: %v", err)
		renderError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to load consumers")
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.ConsumersPage(templates.ConsumersPageProps{
		BaseProps:   templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		NavbarProps: navbarProps(c, "consumers"),
		Consumers:   consumers,
		Success:     popFlash(c, flashSuccess),
		Error:       popFlash(c, flashError),
	}))
}

// CreateConsumer registers a consumer, replacing one with the same key.
func (h *ConsumerHandler) CreateConsumer(c *gin.Context) {
	consumer := &models.Consumer{
		Key:           c.PostForm("key"),
		Name:          c.PostForm("name"),
		Secret:        c.PostForm("secret"),
		PublicKey:     strings.TrimSpace(c.PostForm("public_key")),
		CallbackURL:   strings.TrimSpace(c.PostForm("callback_url")),
		TwoLOAllowed:  c.PostForm("two_lo_allowed") == "true",
		TwoLOExecutor: strings.TrimSpace(c.PostForm("two_lo_executor")),
	}

	err := h.consumerService.RegisterConsumer(c.Request.Context(), consumer)
	switch {
	case err == nil:
		addFlash(c, flashSuccess, "Consumer "+consumer.Key+" registered")
	case errors.Is(err, services.ErrInvalidConsumer):
		addFlash(c, flashError, err.Error())
	default:
		log.Printf("[OAuth] Failed to register consumer %s: %v", consumer.Key, err)
		renderError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to register consumer")
		return
	}

	c.Redirect(http.StatusFound, "/admin/consumers")
}

// DeleteConsumer removes a consumer and revokes all of its tokens.
func (h *ConsumerHandler) DeleteConsumer(c *gin.Context) {
	key := c.Param("key")

	err := h.consumerService.RemoveConsumer(c.Request.Context(), key)
	switch {
	case err == nil:
		addFlash(c, flashSuccess, "Consumer "+key+" removed")
	case errors.Is(err, services.ErrConsumerNotFound):
		addFlash(c, flashError, "Consumer not found")
	default:
		log.Printf("[OAuth] Failed to remove consumer %s: %v", key, err)
		renderError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to remove consumer")
		return
	}

	c.Redirect(http.StatusFound, "/admin/consumers")
}
