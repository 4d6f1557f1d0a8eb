package handlers

import (
	"net/http"
	"time"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/middleware"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/services"

	"github.com/gin-gonic/gin"
)

// ResourceHandler serves the protected resources OAuth consumers call.
type ResourceHandler struct {
	auditService *services.AuditService
	clock        core.Clock
}

func NewResourceHandler(as *services.AuditService, clock core.Clock) *ResourceHandler {
	return &ResourceHandler{auditService: as, clock: clock}
}

// WhoAmI reports the effective identity of the request.
//
//	@Summary		Describe the caller
//	@Description	Report how the request authenticated and which user it acts as
//	@Tags			Resources
//	@Produce		json
//	@Success		200	{object}	object{authentication=string,consumer_key=string,two_legged=bool,principal=string,username=string,display_name=string}	"Effective identity"
//	@Failure		401	{object}	object{error=string,error_description=string}																				"No session and no valid OAuth signature"
//	@Security		OAuth1
//	@Security		SessionAuth
//	@Router			/rest/api/1.0/whoami [get]
func (h *ResourceHandler) WhoAmI(c *gin.Context) {
	resp := gin.H{"authentication": "session"}

	if identity := middleware.GetIdentity(c); identity != nil {
		resp["authentication"] = "oauth"
		resp["consumer_key"] = identity.ConsumerKey
		resp["two_legged"] = identity.TwoLegged
		resp["principal"] = identity.Principal()
	}
	if user := middleware.GetUser(c); user != nil {
		resp["username"] = user.Username
		resp["display_name"] = user.DisplayName()
		resp["principal"] = user.Username
	}

	c.JSON(http.StatusOK, resp)
}

// TriggerBuild queues a build of :name for the effective identity.
func (h *ResourceHandler) TriggerBuild(c *gin.Context) {
	job := c.Param("name")
	principal := principalOf(c)
	now := h.clock.Now()

	h.auditService.Log(c.Request.Context(), services.AuditLogEntry{
		EventType:     models.EventBuildTriggered,
		ActorUsername: principal,
		ResourceType:  models.ResourceProtectedPath,
		ResourceID:    job,
		ConsumerKey:   consumerOf(c),
		Action:        "Build triggered",
		Details:       models.AuditDetails{"oauth": middleware.OAuthAuthenticated(c)},
		Success:       true,
		RequestPath:   c.Request.URL.Path,
		RequestMethod: c.Request.Method,
	})

	c.JSON(http.StatusCreated, gin.H{
		"job":          job,
		"triggered_by": principal,
		"queued_at":    now.UTC().Format(time.RFC3339),
	})
}

// principalOf names the acting user, or the consumer for consumer-only
// requests. Empty when anonymous.
func principalOf(c *gin.Context) string {
	if user := middleware.GetUser(c); user != nil {
		return user.Username
	}
	if identity := middleware.GetIdentity(c); identity != nil {
		return identity.Principal()
	}
	return ""
}

// consumerOf returns the consumer an OAuth request came from, or "".
func consumerOf(c *gin.Context) string {
	if identity := middleware.GetIdentity(c); identity != nil {
		return identity.ConsumerKey
	}
	return ""
}

// NotifyCommit accepts anonymous commit notifications from source hosts.
func (h *ResourceHandler) NotifyCommit(c *gin.Context) {
	repo := c.Query("url")
	if repo == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "url parameter is required",
		})
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditLogEntry{
		EventType:     models.EventBuildTriggered,
		ActorUsername: principalOf(c),
		ResourceType:  models.ResourceProtectedPath,
		ResourceID:    repo,
		ConsumerKey:   consumerOf(c),
		Action:        "Commit notification received",
		Success:       true,
		RequestPath:   c.Request.URL.Path,
		RequestMethod: c.Request.Method,
	})

	c.JSON(http.StatusAccepted, gin.H{"scheduled": repo})
}
