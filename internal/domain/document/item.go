package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/procure/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Item is a line entry of a procurement document. LineKey is the
// natural key used to match lines across replace operations - for
// derived documents it references the originating requisition line.
type Item struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	LineKey     string
	Description string
	Unit        string
	SupplierID  *uuid.UUID
	Quantity    int64
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemInput carries caller-supplied line data into the ledger
type ItemInput struct {
	LineKey     string
	Description string
	Unit        string
	SupplierID  *uuid.UUID
	Quantity    int64
	UnitCost    decimal.Decimal
}

// Validate checks the non-negativity and precision rules without
// mutating anything
func (in ItemInput) Validate() error {
	if in.LineKey == "" {
		return shared.NewDomainError("INVALID_INPUT", "Item line key cannot be empty")
	}
	if in.Quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if in.UnitCost.IsNegative() {
		return shared.ErrInvalidAmount
	}
	if !in.UnitCost.Round(2).Equal(in.UnitCost) {
		return shared.NewDomainError("INVALID_AMOUNT", "Unit cost cannot carry more than 2 fractional digits")
	}
	return nil
}

// lineTotal rounds at multiplication time, half-up to 2 places.
// Each line rounds independently; document totals sum the rounded
// lines. This ordering is load-bearing for reproducibility.
func lineTotal(quantity int64, unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(quantity)).Round(2)
}

// NewItem creates a line entry for a document
func NewItem(documentID uuid.UUID, in ItemInput) (*Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Item{
		ID:          uuid.New(),
		DocumentID:  documentID,
		LineKey:     in.LineKey,
		Description: in.Description,
		Unit:        in.Unit,
		SupplierID:  in.SupplierID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		TotalCost:   lineTotal(in.Quantity, in.UnitCost),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// apply updates the mutable line fields from an input, recomputing the
// derived total
func (i *Item) apply(in ItemInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	i.Description = in.Description
	i.Unit = in.Unit
	i.SupplierID = in.SupplierID
	i.Quantity = in.Quantity
	i.UnitCost = in.UnitCost
	i.TotalCost = lineTotal(in.Quantity, in.UnitCost)
	i.UpdatedAt = time.Now()
	return nil
}

// TotalCostMoney returns the derived line total as Money
func (i *Item) TotalCostMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(i.TotalCost)
}

// UnitCostMoney returns the unit cost as Money
func (i *Item) UnitCostMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(i.UnitCost)
}
