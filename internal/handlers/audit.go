package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 1000
)

// AuditHandler exposes recent security events to administrators.
type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListEvents returns the newest entries matching ?event_type= and/or
// ?consumer_key= as JSON.
//
//	@Summary		List audit events
//	@Description	Newest security events matching an event type and/or consumer key (admin only)
//	@Tags			Audit
//	@Produce		json
//	@Param			event_type		query		string																			false	"Event type, e.g. ACCESS_TOKEN_ISSUED"
//	@Param			consumer_key	query		string																			false	"Consumer key"
//	@Param			limit			query		int																				false	"Maximum entries to return"
//	@Success		200				{object}	object{event_type=string,consumer_key=string,count=int,logs=[]models.AuditLog}	"Matching events"
//	@Failure		400				{object}	object{error=string}															"Neither event_type nor consumer_key given"
//	@Failure		403				{object}	object{error=string}															"Not an administrator"
//	@Failure		500				{object}	object{error=string}															"Failed to retrieve audit logs"
//	@Security		SessionAuth
//	@Router			/admin/audit [get]
func (h *AuditHandler) ListEvents(c *gin.Context) {
	filter, ok := parseAuditQuery(c)
	if !ok {
		return
	}

	logs, err := h.auditService.RecentEvents(filter)
	if err != nil {
		log.Printf("[Audit] failed to list events %+v: %v", filter, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"event_type":   filter.EventType,
		"consumer_key": filter.ConsumerKey,
		"count":        len(logs),
		"logs":         logs,
	})
}

// ExportEvents streams the same selection as CSV.
func (h *AuditHandler) ExportEvents(c *gin.Context) {
	filter, ok := parseAuditQuery(c)
	if !ok {
		return
	}

	logs, err := h.auditService.RecentEvents(filter)
	if err != nil {
		log.Printf("[Audit] failed to export events %+v: %v", filter, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(
		"attachment; filename=audit_%s_%s.csv",
		exportName(filter),
		time.Now().Format("2006-01-02"),
	))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Event Time",
		"Event Type",
		"Severity",
		"Consumer",
		"Actor Username",
		"Actor IP",
		"Resource Type",
		"Resource ID",
		"Action",
		"Success",
		"Error Message",
	}); err != nil {
		return
	}

	for _, entry := range logs {
		success := "Yes"
		if !entry.Success {
			success = "No"
		}
		if err := writer.Write([]string{
			entry.EventTime.Format(time.RFC3339),
			string(entry.EventType),
			string(entry.Severity),
			entry.ConsumerKey,
			entry.ActorUsername,
			entry.ActorIP,
			string(entry.ResourceType),
			entry.ResourceID,
			entry.Action,
			success,
			entry.ErrorMessage,
		}); err != nil {
			return
		}
	}
}

func parseAuditQuery(c *gin.Context) (store.AuditFilter, bool) {
	filter := store.AuditFilter{
		EventType:   models.EventType(c.Query("event_type")),
		ConsumerKey: c.Query("consumer_key"),
	}
	if filter.EventType == "" && filter.ConsumerKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_type or consumer_key is required"})
		return filter, false
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit < 1 {
		limit = defaultAuditLimit
	}
	filter.Limit = min(limit, maxAuditLimit)

	return filter, true
}

// exportName builds the file name part of a CSV export. Consumer keys are
// registered by admins, but are still reduced to filename-safe characters.
func exportName(f store.AuditFilter) string {
	parts := make([]string, 0, 2)
	if f.ConsumerKey != "" {
		parts = append(parts, f.ConsumerKey)
	}
	if f.EventType != "" {
		parts = append(parts, string(f.EventType))
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, strings.Join(parts, "_"))
}
