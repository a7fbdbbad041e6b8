package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemPayload carries one caller-supplied line entry
type ItemPayload struct {
	LineKey     string     `json:"line_key" binding:"required"`
	Description string     `json:"description"`
	Unit        string     `json:"unit"`
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty"`
	Quantity    int64      `json:"quantity" binding:"required"`
	UnitCost    string     `json:"unit_cost" binding:"required"`
}

// CreateDocumentRequest creates a new draft document
type CreateDocumentRequest struct {
	Type     document.Type `json:"-"`
	Period   string        `json:"period" binding:"omitempty,period"`
	SourceID *uuid.UUID    `json:"source_id,omitempty"`
	Remark   string        `json:"remark"`
	Items    []ItemPayload `json:"items"`
	ActorID  *uuid.UUID    `json:"-"`
}

// PerformRequest applies a workflow action to a document
type PerformRequest struct {
	Type       document.Type   `json:"-"`
	DocumentID uuid.UUID       `json:"-"`
	Action     document.Action `json:"action" binding:"required"`
	Extent     document.Extent `json:"extent"`
	// Items, when present, replaces the document's line set in the
	// same transaction as the status change
	Items   []ItemPayload `json:"items"`
	ActorID *uuid.UUID    `json:"-"`
}

// ItemDTO is the outbound representation of a line entry
type ItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	LineKey     string     `json:"line_key"`
	Description string     `json:"description"`
	Unit        string     `json:"unit"`
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty"`
	Quantity    int64      `json:"quantity"`
	UnitCost    string     `json:"unit_cost"`
	TotalCost   string     `json:"total_cost"`
}

// DocumentDTO is the outbound representation of a document
type DocumentDTO struct {
	ID            uuid.UUID            `json:"id"`
	Type          document.Type        `json:"type"`
	Number        string               `json:"number"`
	Status        document.Status      `json:"status"`
	StatusHistory map[string]time.Time `json:"status_history"`
	SourceID      *uuid.UUID           `json:"source_id,omitempty"`
	SupplierID    *uuid.UUID           `json:"supplier_id,omitempty"`
	Period        string               `json:"period"`
	Remark        string               `json:"remark,omitempty"`
	TotalAmount   string               `json:"total_amount"`
	Items         []ItemDTO            `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// AuditEntryDTO is the outbound representation of one audit record
type AuditEntryDTO struct {
	ID         uuid.UUID       `json:"id"`
	Action     document.Action `json:"action"`
	FromStatus document.Status `json:"from_status"`
	ToStatus   document.Status `json:"to_status"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	At         time.Time       `json:"at"`
}

// ToItemInputs converts payload lines to domain inputs, parsing the
// decimal unit costs
func ToItemInputs(payloads []ItemPayload) ([]document.ItemInput, error) {
	inputs := make([]document.ItemInput, 0, len(payloads))
	for _, p := range payloads {
		cost, err := decimal.NewFromString(p.UnitCost)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Unit cost %q of line %q is not a valid decimal", p.UnitCost, p.LineKey))
		}
		inputs = append(inputs, document.ItemInput{
			LineKey:     p.LineKey,
			Description: p.Description,
			Unit:        p.Unit,
			SupplierID:  p.SupplierID,
			Quantity:    p.Quantity,
			UnitCost:    cost,
		})
	}
	return inputs, nil
}

// FromDocument maps a domain document to its DTO
func FromDocument(doc *document.Document) *DocumentDTO {
	items := make([]ItemDTO, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, ItemDTO{
			ID:          item.ID,
			LineKey:     item.LineKey,
			Description: item.Description,
			Unit:        item.Unit,
			SupplierID:  item.SupplierID,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCostMoney().StringFixed(2),
			TotalCost:   item.TotalCostMoney().StringFixed(2),
		})
	}
	history := make(map[string]time.Time, len(doc.History))
	for status, at := range doc.History {
		history[status.String()] = at
	}
	return &DocumentDTO{
		ID:            doc.ID,
		Type:          doc.Type,
		Number:        doc.Number,
		Status:        doc.Status,
		StatusHistory: history,
		SourceID:      doc.SourceID,
		SupplierID:    doc.SupplierID,
		Period:        doc.Period,
		Remark:        doc.Remark,
		TotalAmount:   doc.TotalAmountMoney().StringFixed(2),
		Items:         items,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

// FromAuditEntries maps audit records to DTOs
func FromAuditEntries(entries []document.AuditEntry) []AuditEntryDTO {
	out := make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryDTO{
			ID:         e.ID,
			Action:     e.Action,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ActorID:    e.ActorID,
			At:         e.At,
		})
	}
	return out
}
