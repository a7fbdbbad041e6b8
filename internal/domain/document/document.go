package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/procure/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Document is the common envelope of every procurement document. The
// per-type differences live entirely in the transition table and the
// propagator; the envelope owns the line-item ledger, the derived
// total and the append-only status history.
type Document struct {
	shared.BaseAggregateRoot
	Type        Type
	Number      string
	Status      Status
	History     StatusHistory
	Items       []Item
	TotalAmount decimal.Decimal
	// SourceID is a read-only back-reference to the predecessor
	// document (e.g. a purchase order points at its abstract of
	// quotation). Never rewritten after creation.
	SourceID   *uuid.UUID
	SupplierID *uuid.UUID
	Period     string
	Remark     string
}

// New creates a document in draft status with its draft entry recorded
// in the history
func New(t Type, number, period string) (*Document, error) {
	if !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown document type %q", t))
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number cannot be empty")
	}
	doc := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              t,
		Number:            number,
		Status:            StatusDraft,
		History:           NewStatusHistory(StatusDraft, time.Now()),
		Items:             make([]Item, 0),
		TotalAmount:       decimal.Zero,
		Period:            period,
	}
	doc.AddDomainEvent(NewCreatedEvent(doc))
	return doc, nil
}

// SetSource records the predecessor back-reference. It may be set once,
// at creation time.
func (d *Document) SetSource(sourceID uuid.UUID) error {
	if d.SourceID != nil {
		return shared.NewDomainError("INVALID_INPUT", "Document source reference cannot be rewritten")
	}
	d.SourceID = &sourceID
	return nil
}

// SetSupplier records the awardee supplier (purchase orders)
func (d *Document) SetSupplier(supplierID uuid.UUID) {
	d.SupplierID = &supplierID
	d.UpdatedAt = time.Now()
}

// SetRemark sets the document remark
func (d *Document) SetRemark(remark string) {
	d.Remark = remark
	d.UpdatedAt = time.Now()
}

// IsTerminal returns true if the current status has no outgoing
// transitions
func (d *Document) IsTerminal() bool {
	return d.Status.TerminalFor(d.Type)
}

// IsDraft returns true if the document has not left draft
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft
}

// CanDelete returns true if the document may be physically deleted.
// Documents that have left draft follow a soft lifecycle only.
func (d *Document) CanDelete() bool {
	return d.IsDraft()
}

// CanModifyItems returns true if the item ledger accepts replacement
// in the current status
func (d *Document) CanModifyItems() bool {
	return !d.IsTerminal()
}

// ReplaceItems replaces the item set keyed by each line's natural key:
// lines absent from inputs are deleted, matching lines are updated in
// place, new lines are created. Line totals and the document total are
// recomputed. Item identity deliberately resets line-by-line on every
// replace; downstream documents re-derive from the natural key.
func (d *Document) ReplaceItems(inputs []ItemInput) error {
	if !d.CanModifyItems() {
		return shared.NewDomainError("ILLEGAL_TRANSITION",
			fmt.Sprintf("Cannot modify items of a %s in terminal status %q", d.Type, d.Status))
	}
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if err := in.Validate(); err != nil {
			return err
		}
		if seen[in.LineKey] {
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Duplicate line key %q in item list", in.LineKey))
		}
		seen[in.LineKey] = true
	}

	kept := make([]Item, 0, len(inputs))
	existing := make(map[string]*Item, len(d.Items))
	for idx := range d.Items {
		existing[d.Items[idx].LineKey] = &d.Items[idx]
	}
	for _, in := range inputs {
		if current, ok := existing[in.LineKey]; ok {
			if err := current.apply(in); err != nil {
				return err
			}
			kept = append(kept, *current)
			continue
		}
		item, err := NewItem(d.ID, in)
		if err != nil {
			return err
		}
		kept = append(kept, *item)
	}

	d.Items = kept
	d.TotalAmount = d.RecomputeTotal()
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// RecomputeTotal sums the rounded line totals. It never trusts the
// cached TotalAmount column.
func (d *Document) RecomputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.TotalCost)
	}
	return total.Round(2)
}

// Apply performs a workflow transition: it resolves the transition
// table, moves the status, records the first-entry timestamp and
// returns the effects for the propagator. On an illegal transition the
// document is left untouched.
func (d *Document) Apply(action Action, extent Extent, actorID *uuid.UUID) ([]Effect, error) {
	next, effects, err := Transition(d.Type, d.Status, action, extent)
	if err != nil {
		return nil, err
	}
	from := d.Status
	now := time.Now()
	d.Status = next
	d.History.Record(next, now)
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(NewTransitionedEvent(d, action, from, next, actorID))
	return effects, nil
}

// ItemByKey returns the line with the given natural key, or nil
func (d *Document) ItemByKey(lineKey string) *Item {
	for idx := range d.Items {
		if d.Items[idx].LineKey == lineKey {
			return &d.Items[idx]
		}
	}
	return nil
}

// AwardedItems returns the lines carrying an awardee supplier
func (d *Document) AwardedItems() []Item {
	items := make([]Item, 0, len(d.Items))
	for _, item := range d.Items {
		if item.SupplierID != nil {
			items = append(items, item)
		}
	}
	return items
}

// ItemsBySupplier groups the awarded lines by awardee supplier,
// preserving line order within each group
func (d *Document) ItemsBySupplier() map[uuid.UUID][]Item {
	groups := make(map[uuid.UUID][]Item)
	for _, item := range d.Items {
		if item.SupplierID == nil {
			continue
		}
		groups[*item.SupplierID] = append(groups[*item.SupplierID], item)
	}
	return groups
}

// ItemCount returns the number of lines
func (d *Document) ItemCount() int {
	return len(d.Items)
}

// TotalAmountMoney returns the derived total as Money
func (d *Document) TotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(d.TotalAmount)
}
