package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/inventory"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/procure/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSupplyRepository implements inventory.Repository using GORM
type GormSupplyRepository struct {
	db *gorm.DB
}

// NewGormSupplyRepository creates a new GormSupplyRepository
func NewGormSupplyRepository(db *gorm.DB) *GormSupplyRepository {
	return &GormSupplyRepository{db: db}
}

// FindByID finds a supply by its ID
func (r *GormSupplyRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Supply, error) {
	var model models.SupplyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a supply by its number
func (r *GormSupplyRepository) FindByNumber(ctx context.Context, number string) (*inventory.Supply, error) {
	var model models.SupplyModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumberForUpdate finds a supply by number under FOR UPDATE, so
// two issuances drawing from the same supply see each other's rows
// before the availability check. SQLite serializes writers on its own
// and rejects the locking clause, hence the dialect guard.
func (r *GormSupplyRepository) FindByNumberForUpdate(ctx context.Context, number string) (*inventory.Supply, error) {
	query := r.db.WithContext(ctx).Where("number = ?", number)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.SupplyModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySourceDocument finds supplies snapshotted from a purchase order
func (r *GormSupplyRepository) FindBySourceDocument(ctx context.Context, documentID uuid.UUID) ([]inventory.Supply, error) {
	var supplyModels []models.SupplyModel
	if err := r.db.WithContext(ctx).
		Where("source_document_id = ?", documentID).
		Order("number asc").
		Find(&supplyModels).Error; err != nil {
		return nil, err
	}
	return toDomainSupplies(supplyModels), nil
}

// FindAll returns all registered supplies
func (r *GormSupplyRepository) FindAll(ctx context.Context) ([]inventory.Supply, error) {
	var supplyModels []models.SupplyModel
	if err := r.db.WithContext(ctx).Order("number asc").Find(&supplyModels).Error; err != nil {
		return nil, err
	}
	return toDomainSupplies(supplyModels), nil
}

// Save persists a supply snapshot
func (r *GormSupplyRepository) Save(ctx context.Context, supply *inventory.Supply) error {
	model := models.SupplyModelFromDomain(supply)
	return r.db.WithContext(ctx).Save(&model).Error
}

// IssuedQuantity sums the quantities of the supply already issued by
// inventory issuances that have reached issued status. The current
// document is excluded so its own pending lines do not count against
// availability.
func (r *GormSupplyRepository) IssuedQuantity(ctx context.Context, supplyID uuid.UUID, excludeDocumentID uuid.UUID) (int64, error) {
	var supply models.SupplyModel
	if err := r.db.WithContext(ctx).Select("number").First(&supply, "id = ?", supplyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.DocumentItemModel{}).
		Joins("JOIN documents ON documents.id = document_items.document_id").
		Where("documents.type = ?", document.TypeInventoryIssuance).
		Where("documents.status = ?", document.StatusIssued).
		Where("document_items.line_key = ?", supply.Number)
	if excludeDocumentID != uuid.Nil {
		query = query.Where("documents.id <> ?", excludeDocumentID)
	}

	var issued struct {
		Total int64
	}
	if err := query.Select("COALESCE(SUM(document_items.quantity), 0) AS total").
		Scan(&issued).Error; err != nil {
		return 0, err
	}
	return issued.Total, nil
}

func toDomainSupplies(supplyModels []models.SupplyModel) []inventory.Supply {
	supplies := make([]inventory.Supply, len(supplyModels))
	for i := range supplyModels {
		supplies[i] = *supplyModels[i].ToDomain()
	}
	return supplies
}

var _ inventory.Repository = (*GormSupplyRepository)(nil)
