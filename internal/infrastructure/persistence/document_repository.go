package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/procure/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document by type and human-readable number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, t document.Type, number string) (*document.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("type = ? AND number = ?", t, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByType finds documents of a type with filtering and pagination
func (r *GormDocumentRepository) FindByType(ctx context.Context, t document.Type, filter shared.Filter) ([]document.Document, error) {
	var documentModels []models.DocumentModel

	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("type = ?", t)
	query = r.applyFilter(query, filter)

	if err := query.Preload("Items").Find(&documentModels).Error; err != nil {
		return nil, err
	}
	docs := make([]document.Document, len(documentModels))
	for i := range documentModels {
		docs[i] = *documentModels[i].ToDomain()
	}
	return docs, nil
}

// CountByType counts documents of a type matching the filter
func (r *GormDocumentRepository) CountByType(ctx context.Context, t document.Type, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("type = ?", t)
	query = r.applyConditions(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBySource finds documents of a type derived from a predecessor
func (r *GormDocumentRepository) FindBySource(ctx context.Context, t document.Type, sourceID uuid.UUID) ([]document.Document, error) {
	var documentModels []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("type = ? AND source_id = ?", t, sourceID).
		Order("number asc").
		Find(&documentModels).Error; err != nil {
		return nil, err
	}
	docs := make([]document.Document, len(documentModels))
	for i := range documentModels {
		docs[i] = *documentModels[i].ToDomain()
	}
	return docs, nil
}

// Save persists a document and its line set. Lines absent from the
// aggregate are deleted, matching the ledger's replace-by-natural-key
// semantics.
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	model := models.DocumentModelFromDomain(doc)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(&model).Error; err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		keys := make([]string, 0, len(model.Items))
		for _, item := range model.Items {
			keys = append(keys, item.LineKey)
		}
		prune := tx.Where("document_id = ?", model.ID)
		if len(keys) > 0 {
			prune = prune.Where("line_key NOT IN ?", keys)
		}
		if err := prune.Delete(&models.DocumentItemModel{}).Error; err != nil {
			return fmt.Errorf("prune document items: %w", err)
		}

		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return fmt.Errorf("save document item: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a document physically. Only drafts may be deleted.
func (r *GormDocumentRepository) Delete(ctx context.Context, doc *document.Document) error {
	if !doc.CanDelete() {
		return shared.NewDomainError("ILLEGAL_TRANSITION",
			fmt.Sprintf("Document %s has left draft and cannot be deleted", doc.Number))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DocumentModel{}, "id = ?", doc.ID).Error
	})
}

// allowedSortColumns whitelists user-facing sort keys
var allowedSortColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"number":       true,
	"status":       true,
	"total_amount": true,
}

func (r *GormDocumentRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if period, ok := filter.Filters["period"]; ok {
		query = query.Where("period = ?", period)
	}
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	orderBy := filter.OrderBy
	if !allowedSortColumns[orderBy] {
		orderBy = "created_at"
	}
	dir := "desc"
	if filter.OrderDir == "asc" {
		dir = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, dir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

var _ document.Repository = (*GormDocumentRepository)(nil)
