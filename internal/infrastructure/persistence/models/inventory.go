package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/inventory"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplyModel is the persistence model for the Supply snapshot
type SupplyModel struct {
	AggregateModel
	Number           string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	Description      string          `gorm:"type:text"`
	Unit             string          `gorm:"type:varchar(40)"`
	Quantity         int64           `gorm:"not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SourceDocumentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceLineKey    string          `gorm:"type:varchar(100);not null"`
	ReceivedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplyModel) TableName() string {
	return "supplies"
}

// ToDomain converts the persistence model to a domain Supply
func (m *SupplyModel) ToDomain() *inventory.Supply {
	return &inventory.Supply{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Number:           m.Number,
		Description:      m.Description,
		Unit:             m.Unit,
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		SourceDocumentID: m.SourceDocumentID,
		SourceLineKey:    m.SourceLineKey,
		ReceivedAt:       m.ReceivedAt,
	}
}

// FromDomain populates the persistence model from a domain Supply
func (m *SupplyModel) FromDomain(s *inventory.Supply) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Version = s.Version
	m.Number = s.Number
	m.Description = s.Description
	m.Unit = s.Unit
	m.Quantity = s.Quantity
	m.UnitCost = s.UnitCost
	m.SourceDocumentID = s.SourceDocumentID
	m.SourceLineKey = s.SourceLineKey
	m.ReceivedAt = s.ReceivedAt
}

// SupplyModelFromDomain creates a persistence model from a domain Supply
func SupplyModelFromDomain(s *inventory.Supply) *SupplyModel {
	m := &SupplyModel{}
	m.FromDomain(s)
	return m
}
