package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of audit event
type EventType string

const (
	// Interactive authentication events
	EventAuthenticationSuccess EventType = "AUTHENTICATION_SUCCESS"
	EventAuthenticationFailure EventType = "AUTHENTICATION_FAILURE"
	EventLogout                EventType = "LOGOUT"

	// OAuth request authentication events
	EventOAuthRequestAuthenticated EventType = "OAUTH_REQUEST_AUTHENTICATED"
	EventOAuthRequestRejected      EventType = "OAUTH_REQUEST_REJECTED"

	// Token lifecycle events
	EventRequestTokenIssued     EventType = "REQUEST_TOKEN_ISSUED"
	EventRequestTokenAuthorized EventType = "REQUEST_TOKEN_AUTHORIZED"
	EventRequestTokenDenied     EventType = "REQUEST_TOKEN_DENIED"
	EventAccessTokenIssued      EventType = "ACCESS_TOKEN_ISSUED"
	EventAccessTokenRenewed     EventType = "ACCESS_TOKEN_RENEWED"
	EventTokenRevoked           EventType = "TOKEN_REVOKED"
	EventConsumerTokensRevoked  EventType = "CONSUMER_TOKENS_REVOKED" //nolint:gosec // G101: event name, not a credential

	// Consumer registry events
	EventConsumerRegistered EventType = "CONSUMER_REGISTERED"
	EventConsumerRemoved    EventType = "CONSUMER_REMOVED"

	// Security events
	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"
	EventNonceReplay       EventType = "NONCE_REPLAY"

	// Protected resource events
	EventBuildTriggered EventType = "BUILD_TRIGGERED"
)

// EventSeverity represents the severity level of an audit event
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "INFO"
	SeverityWarning  EventSeverity = "WARNING"
	SeverityError    EventSeverity = "ERROR"
	SeverityCritical EventSeverity = "CRITICAL"
)

// ResourceType represents the type of resource being operated on
type ResourceType string

const (
	ResourceUser          ResourceType = "USER"
	ResourceConsumer      ResourceType = "CONSUMER"
	ResourceRequestToken  ResourceType = "REQUEST_TOKEN"
	ResourceAccessToken   ResourceType = "ACCESS_TOKEN"
	ResourceProtectedPath ResourceType = "PROTECTED_PATH"
)

// AuditDetails holds event-specific fields, stored as a JSON column.
type AuditDetails map[string]any

func (a AuditDetails) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL, which is valid here
	}
	return json.Marshal(a)
}

func (a *AuditDetails) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal AuditDetails value: %v", value)
	}

	result := make(AuditDetails)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*a = result
	return nil
}

// AuditLog is one immutable security event. Token values never appear in
// it: ResourceID holds a fingerprint for token resources.
type AuditLog struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	EventType EventType     `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time     `gorm:"index;not null"                  json:"event_time"`
	Severity  EventSeverity `gorm:"type:varchar(20);not null"       json:"severity"`

	// ConsumerKey links the event to a linked application, so all activity
	// of one consumer can be pulled up when its link is investigated.
	ConsumerKey string `gorm:"type:varchar(255);index" json:"consumer_key,omitempty"`

	ActorUserID   string `gorm:"type:varchar(36);index" json:"actor_user_id,omitempty"`
	ActorUsername string `gorm:"type:varchar(100)"      json:"actor_username"`
	ActorIP       string `gorm:"type:varchar(45);index" json:"actor_ip"`

	ResourceType ResourceType `gorm:"type:varchar(50);index"  json:"resource_type"`
	ResourceID   string       `gorm:"type:varchar(255);index" json:"resource_id"`
	ResourceName string       `gorm:"type:varchar(255)"       json:"resource_name,omitempty"`

	Action       string       `gorm:"type:varchar(255);not null" json:"action"`
	Details      AuditDetails `gorm:"type:json"                  json:"details,omitempty"`
	Success      bool         `gorm:"index;not null"             json:"success"`
	ErrorMessage string       `gorm:"type:text"                  json:"error_message,omitempty"`

	UserAgent     string `gorm:"type:varchar(500)" json:"user_agent,omitempty"`
	RequestPath   string `gorm:"type:varchar(500)" json:"request_path,omitempty"`
	RequestMethod string `gorm:"type:varchar(10)"  json:"request_method,omitempty"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
