package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document aggregate
type DocumentModel struct {
	AggregateModel
	Type        document.Type           `gorm:"type:varchar(40);not null;index:idx_documents_type_status,priority:1;uniqueIndex:idx_documents_type_number,priority:1"`
	Number      string                  `gorm:"type:varchar(40);not null;uniqueIndex:idx_documents_type_number,priority:2"`
	Status      document.Status         `gorm:"type:varchar(40);not null;default:'draft';index:idx_documents_type_status,priority:2"`
	History     document.StatusHistory  `gorm:"type:jsonb;not null"`
	TotalAmount decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	SourceID    *uuid.UUID              `gorm:"type:uuid;index"`
	SupplierID  *uuid.UUID              `gorm:"type:uuid;index"`
	Period      string                  `gorm:"type:varchar(20);not null"`
	Remark      string                  `gorm:"type:text"`
	Items       []DocumentItemModel     `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *document.Document {
	doc := &document.Document{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Type:        m.Type,
		Number:      m.Number,
		Status:      m.Status,
		History:     m.History.Clone(),
		TotalAmount: m.TotalAmount,
		SourceID:    m.SourceID,
		SupplierID:  m.SupplierID,
		Period:      m.Period,
		Remark:      m.Remark,
		Items:       make([]document.Item, len(m.Items)),
	}
	for i := range m.Items {
		doc.Items[i] = *m.Items[i].ToDomain()
	}
	return doc
}

// FromDomain populates the persistence model from a domain Document
func (m *DocumentModel) FromDomain(doc *document.Document) {
	m.FromDomainBaseEntity(doc.BaseEntity)
	m.Version = doc.Version
	m.Type = doc.Type
	m.Number = doc.Number
	m.Status = doc.Status
	m.History = doc.History.Clone()
	m.TotalAmount = doc.TotalAmount
	m.SourceID = doc.SourceID
	m.SupplierID = doc.SupplierID
	m.Period = doc.Period
	m.Remark = doc.Remark
	m.Items = make([]DocumentItemModel, len(doc.Items))
	for i, item := range doc.Items {
		m.Items[i] = *DocumentItemModelFromDomain(&item)
	}
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(doc *document.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(doc)
	return m
}

// DocumentItemModel is the persistence model for a document line entry
type DocumentItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_document_items_doc_key,priority:1"`
	LineKey     string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_document_items_doc_key,priority:2"`
	Description string          `gorm:"type:text"`
	Unit        string          `gorm:"type:varchar(40)"`
	SupplierID  *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity    int64           `gorm:"not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentItemModel) TableName() string {
	return "document_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *DocumentItemModel) ToDomain() *document.Item {
	return &document.Item{
		ID:          m.ID,
		DocumentID:  m.DocumentID,
		LineKey:     m.LineKey,
		Description: m.Description,
		Unit:        m.Unit,
		SupplierID:  m.SupplierID,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// DocumentItemModelFromDomain creates a persistence model from a domain Item
func DocumentItemModelFromDomain(item *document.Item) *DocumentItemModel {
	return &DocumentItemModel{
		ID:          item.ID,
		DocumentID:  item.DocumentID,
		LineKey:     item.LineKey,
		Description: item.Description,
		Unit:        item.Unit,
		SupplierID:  item.SupplierID,
		Quantity:    item.Quantity,
		UnitCost:    item.UnitCost,
		TotalCost:   item.TotalCost,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
