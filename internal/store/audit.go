package store

import (
	"time"

	"github.com/go-authgate/applink/internal/models"
)

// AuditFilter selects audit entries. Empty fields match everything.
type AuditFilter struct {
	EventType   models.EventType
	ConsumerKey string
	Limit       int
}

// CreateAuditLog writes a single audit log entry.
func (s *Store) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// CreateAuditLogBatch writes several audit log entries in one statement.
func (s *Store) CreateAuditLogBatch(entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.CreateInBatches(entries, 100).Error
}

// DeleteOldAuditLogs removes entries created before cutoff.
func (s *Store) DeleteOldAuditLogs(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// ListAuditLogs returns the newest entries matching f.
func (s *Store) ListAuditLogs(f AuditFilter) ([]models.AuditLog, error) {
	query := s.db.Model(&models.AuditLog{})
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if f.ConsumerKey != "" {
		query = query.Where("consumer_key = ?", f.ConsumerKey)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").Find(&logs).Error
	return logs, err
}
