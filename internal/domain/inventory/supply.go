package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Supply is a quantity/cost snapshot of one received purchase order
// line. It is created at receipt time and never mutated afterwards;
// availability is always derived from issuances, never stored.
type Supply struct {
	shared.BaseAggregateRoot
	Number      string
	Description string
	Unit        string
	Quantity    int64
	UnitCost    decimal.Decimal
	// SourceDocumentID / SourceLineKey point at the received purchase
	// order line this snapshot was taken from.
	SourceDocumentID uuid.UUID
	SourceLineKey    string
	ReceivedAt       time.Time
}

// NewSupply snapshots a received line into the supply registry
func NewSupply(number, description, unit string, quantity int64, unitCost decimal.Decimal, sourceDocumentID uuid.UUID, sourceLineKey string) (*Supply, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supply number cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Supply quantity must be positive, got %d", quantity))
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Supply unit cost cannot be negative")
	}
	if sourceDocumentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supply source document cannot be empty")
	}
	return &Supply{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Description:       description,
		Unit:              unit,
		Quantity:          quantity,
		UnitCost:          unitCost,
		SourceDocumentID:  sourceDocumentID,
		SourceLineKey:     sourceLineKey,
		ReceivedAt:        time.Now(),
	}, nil
}

// Available returns the quantity still issuable given the total
// already issued against this supply
func (s *Supply) Available(issued int64) int64 {
	remaining := s.Quantity - issued
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanIssue reports whether the requested quantity fits the derived
// availability
func (s *Supply) CanIssue(requested, issued int64) bool {
	return requested > 0 && requested <= s.Available(issued)
}
