package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/inventory"
)

// SupplyDTO is the outbound representation of a supply snapshot with
// its derived availability
type SupplyDTO struct {
	ID               uuid.UUID `json:"id"`
	Number           string    `json:"number"`
	Description      string    `json:"description"`
	Unit             string    `json:"unit"`
	Quantity         int64     `json:"quantity"`
	Issued           int64     `json:"issued"`
	Available        int64     `json:"available"`
	UnitCost         string    `json:"unit_cost"`
	SourceDocumentID uuid.UUID `json:"source_document_id"`
	SourceLineKey    string    `json:"source_line_key"`
	ReceivedAt       time.Time `json:"received_at"`
}

func fromSupply(s *inventory.Supply, issued int64) SupplyDTO {
	return SupplyDTO{
		ID:               s.ID,
		Number:           s.Number,
		Description:      s.Description,
		Unit:             s.Unit,
		Quantity:         s.Quantity,
		Issued:           issued,
		Available:        s.Available(issued),
		UnitCost:         s.UnitCost.StringFixed(2),
		SourceDocumentID: s.SourceDocumentID,
		SourceLineKey:    s.SourceLineKey,
		ReceivedAt:       s.ReceivedAt,
	}
}

// ListSupplies returns every registered supply with its derived
// availability
func (o *Orchestrator) ListSupplies(ctx context.Context) ([]SupplyDTO, error) {
	repos := o.uow.Repositories()
	supplies, err := repos.Supplies.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]SupplyDTO, 0, len(supplies))
	for i := range supplies {
		issued, err := repos.Supplies.IssuedQuantity(ctx, supplies[i].ID, uuid.Nil)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, fromSupply(&supplies[i], issued))
	}
	return dtos, nil
}

// GetSupply returns one supply by ID
func (o *Orchestrator) GetSupply(ctx context.Context, id uuid.UUID) (*SupplyDTO, error) {
	repos := o.uow.Repositories()
	supply, err := repos.Supplies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	issued, err := repos.Supplies.IssuedQuantity(ctx, supply.ID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	dto := fromSupply(supply, issued)
	return &dto, nil
}
