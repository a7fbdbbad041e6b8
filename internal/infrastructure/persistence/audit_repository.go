package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditTrail implements document.AuditTrail using GORM. The table
// is append-only: entries are never updated or deleted.
type GormAuditTrail struct {
	db *gorm.DB
}

// NewGormAuditTrail creates a new GormAuditTrail
func NewGormAuditTrail(db *gorm.DB) *GormAuditTrail {
	return &GormAuditTrail{db: db}
}

// Append writes one transition record
func (r *GormAuditTrail) Append(ctx context.Context, entry *document.AuditEntry) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByDocument returns a document's transition records, oldest first
func (r *GormAuditTrail) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]document.AuditEntry, error) {
	var logModels []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("at asc").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	entries := make([]document.AuditEntry, len(logModels))
	for i := range logModels {
		entries[i] = *logModels[i].ToDomain()
	}
	return entries, nil
}

var _ document.AuditTrail = (*GormAuditTrail)(nil)
