package document

// EffectKind identifies a cross-document side effect of a transition
type EffectKind string

const (
	// EffectSpawnQuotationRequest creates a canvassing RFQ for an approved purchase request
	EffectSpawnQuotationRequest EffectKind = "spawn_quotation_request"
	// EffectSpawnPurchaseOrders creates draft purchase orders from awarded abstract items, one per awardee
	EffectSpawnPurchaseOrders EffectKind = "spawn_purchase_orders"
	// EffectAdvanceRequest pushes the award result onto the originating purchase request
	EffectAdvanceRequest EffectKind = "advance_request"
	// EffectRegisterSupplies snapshots received purchase order items into the inventory supply registry
	EffectRegisterSupplies EffectKind = "register_supplies"
	// EffectDeductSupplies validates issued quantities against derived supply availability
	EffectDeductSupplies EffectKind = "deduct_supplies"
)

// Effect is a declarative instruction produced by a transition and
// consumed by the propagator. The state machine never performs side
// effects itself.
type Effect struct {
	Kind   EffectKind
	Extent Extent
}
