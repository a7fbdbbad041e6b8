package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
)

// AuditLogModel is the append-only record of one workflow transition
type AuditLogModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_logs_document_at,priority:1"`
	DocumentType document.Type   `gorm:"type:varchar(40);not null"`
	Number       string          `gorm:"type:varchar(40);not null"`
	Action       document.Action `gorm:"type:varchar(40);not null"`
	FromStatus   document.Status `gorm:"type:varchar(40);not null"`
	ToStatus     document.Status `gorm:"type:varchar(40);not null"`
	ActorID      *uuid.UUID      `gorm:"type:uuid;index"`
	At           time.Time       `gorm:"not null;index:idx_audit_logs_document_at,priority:2"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain AuditEntry
func (m *AuditLogModel) ToDomain() *document.AuditEntry {
	return &document.AuditEntry{
		ID:           m.ID,
		DocumentID:   m.DocumentID,
		DocumentType: m.DocumentType,
		Number:       m.Number,
		Action:       m.Action,
		FromStatus:   m.FromStatus,
		ToStatus:     m.ToStatus,
		ActorID:      m.ActorID,
		At:           m.At,
	}
}

// AuditLogModelFromDomain creates a persistence model from a domain AuditEntry
func AuditLogModelFromDomain(e *document.AuditEntry) *AuditLogModel {
	return &AuditLogModel{
		ID:           e.ID,
		DocumentID:   e.DocumentID,
		DocumentType: e.DocumentType,
		Number:       e.Number,
		Action:       e.Action,
		FromStatus:   e.FromStatus,
		ToStatus:     e.ToStatus,
		ActorID:      e.ActorID,
		At:           e.At,
	}
}
