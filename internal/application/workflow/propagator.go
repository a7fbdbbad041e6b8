package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/inventory"
	"github.com/procure/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Propagator applies the cross-document effects a transition emits.
// Handlers run inside the orchestrator's transaction: any failure rolls
// back the triggering transition together with everything the cascade
// already touched.
type Propagator struct {
	logger *zap.Logger
}

// NewPropagator creates a propagator
func NewPropagator(logger *zap.Logger) *Propagator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Propagator{logger: logger}
}

// Apply dispatches one effect to its handler
func (p *Propagator) Apply(ctx context.Context, repos Repositories, source *document.Document, effect document.Effect) error {
	switch effect.Kind {
	case document.EffectSpawnQuotationRequest:
		return p.spawnQuotationRequest(ctx, repos, source)
	case document.EffectSpawnPurchaseOrders:
		return p.spawnPurchaseOrders(ctx, repos, source, effect.Extent)
	case document.EffectAdvanceRequest:
		return p.advanceRequest(ctx, repos, source, effect.Extent)
	case document.EffectRegisterSupplies:
		return p.registerSupplies(ctx, repos, source)
	case document.EffectDeductSupplies:
		return p.deductSupplies(ctx, repos, source)
	default:
		return fmt.Errorf("no handler for effect %q", effect.Kind)
	}
}

// spawnQuotationRequest creates a draft RFQ carrying the request's
// lines so canvassing starts from the requisition as-is
func (p *Propagator) spawnQuotationRequest(ctx context.Context, repos Repositories, request *document.Document) error {
	number, err := repos.Sequences.Next(ctx, document.TypeRequestForQuotation, request.Period)
	if err != nil {
		return fmt.Errorf("quotation request numbering: %w", err)
	}
	rfq, err := document.New(document.TypeRequestForQuotation, number, request.Period)
	if err != nil {
		return err
	}
	if err := rfq.SetSource(request.ID); err != nil {
		return err
	}
	if err := rfq.ReplaceItems(copyInputs(request.Items)); err != nil {
		return err
	}
	if err := repos.Documents.Save(ctx, rfq); err != nil {
		return fmt.Errorf("save quotation request: %w", err)
	}
	p.logger.Info("Spawned request for quotation",
		zap.String("request_number", request.Number),
		zap.String("rfq_number", rfq.Number),
	)
	return nil
}

// spawnPurchaseOrders groups the abstract's awarded lines by awardee
// supplier and creates-or-updates one draft purchase order per group.
// With a partial award the unassigned lines simply stay on the source
// for re-canvassing.
func (p *Propagator) spawnPurchaseOrders(ctx context.Context, repos Repositories, abstract *document.Document, extent document.Extent) error {
	groups := abstract.ItemsBySupplier()
	if len(groups) == 0 {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Awarding %s requires at least one line with an awardee supplier", abstract.Number))
	}
	if extent == document.ExtentFull {
		if len(abstract.AwardedItems()) != abstract.ItemCount() {
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Full award of %s requires an awardee on every line", abstract.Number))
		}
	}

	existing, err := repos.Documents.FindBySource(ctx, document.TypePurchaseOrder, abstract.ID)
	if err != nil {
		return fmt.Errorf("load existing purchase orders: %w", err)
	}
	bySupplier := make(map[uuid.UUID]*document.Document, len(existing))
	for idx := range existing {
		if existing[idx].SupplierID != nil {
			bySupplier[*existing[idx].SupplierID] = &existing[idx]
		}
	}

	for supplierID, items := range groups {
		order, exists := bySupplier[supplierID]
		if !exists {
			number, err := repos.Sequences.Next(ctx, document.TypePurchaseOrder, abstract.Period)
			if err != nil {
				return fmt.Errorf("purchase order numbering: %w", err)
			}
			order, err = document.New(document.TypePurchaseOrder, number, abstract.Period)
			if err != nil {
				return err
			}
			if err := order.SetSource(abstract.ID); err != nil {
				return err
			}
			order.SetSupplier(supplierID)
		} else if !order.IsDraft() {
			return shared.NewDomainError("ILLEGAL_TRANSITION",
				fmt.Sprintf("Purchase order %s for supplier %s has left draft and cannot be re-awarded", order.Number, supplierID))
		}
		if err := order.ReplaceItems(copyInputs(items)); err != nil {
			return err
		}
		if err := repos.Documents.Save(ctx, order); err != nil {
			return fmt.Errorf("save purchase order: %w", err)
		}
		p.logger.Info("Spawned purchase order",
			zap.String("abstract_number", abstract.Number),
			zap.String("order_number", order.Number),
			zap.String("supplier_id", supplierID.String()),
			zap.Int("items", len(items)),
		)
	}
	return nil
}

// advanceRequest moves the originating purchase request along with the
// abstract's award, carrying the award extent
func (p *Propagator) advanceRequest(ctx context.Context, repos Repositories, abstract *document.Document, extent document.Extent) error {
	if abstract.SourceID == nil {
		return shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("Abstract %s has no originating purchase request", abstract.Number))
	}
	request, err := repos.Documents.FindByID(ctx, *abstract.SourceID)
	if err != nil {
		return fmt.Errorf("load purchase request: %w", err)
	}
	if extent == document.ExtentNone {
		extent = document.ExtentFull
	}
	if _, err := request.Apply(document.ActionAward, extent, nil); err != nil {
		return err
	}
	if err := repos.Documents.Save(ctx, request); err != nil {
		return fmt.Errorf("save purchase request: %w", err)
	}
	return nil
}

// registerSupplies snapshots each received purchase order line into the
// supply registry. Quantities and costs are copied, not linked live.
func (p *Propagator) registerSupplies(ctx context.Context, repos Repositories, order *document.Document) error {
	for _, item := range order.Items {
		number, err := repos.SupplyNumbers.Next(ctx)
		if err != nil {
			return fmt.Errorf("supply numbering: %w", err)
		}
		supply, err := inventory.NewSupply(number, item.Description, item.Unit, item.Quantity, item.UnitCost, order.ID, item.LineKey)
		if err != nil {
			return err
		}
		if err := repos.Supplies.Save(ctx, supply); err != nil {
			return fmt.Errorf("save supply: %w", err)
		}
	}
	p.logger.Info("Registered supplies from receipt",
		zap.String("order_number", order.Number),
		zap.Int("supplies", len(order.Items)),
	)
	return nil
}

// deductSupplies validates each issuance line against the derived
// availability of its referenced supply. Issuance lines reference
// supplies by number through the line key. Availability is always
// derived, never stored.
func (p *Propagator) deductSupplies(ctx context.Context, repos Repositories, issuance *document.Document) error {
	for _, item := range issuance.Items {
		// The row lock keeps a concurrent issuance of the same supply
		// from passing the check on a stale issued sum.
		supply, err := repos.Supplies.FindByNumberForUpdate(ctx, item.LineKey)
		if err != nil {
			return fmt.Errorf("load supply %q: %w", item.LineKey, err)
		}
		issued, err := repos.Supplies.IssuedQuantity(ctx, supply.ID, issuance.ID)
		if err != nil {
			return fmt.Errorf("sum issued quantity of supply %q: %w", supply.Number, err)
		}
		if !supply.CanIssue(item.Quantity, issued) {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Supply %s has %d available, requested %d", supply.Number, supply.Available(issued), item.Quantity))
		}
	}
	return nil
}

func copyInputs(items []document.Item) []document.ItemInput {
	inputs := make([]document.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, document.ItemInput{
			LineKey:     item.LineKey,
			Description: item.Description,
			Unit:        item.Unit,
			SupplierID:  item.SupplierID,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
		})
	}
	return inputs
}
