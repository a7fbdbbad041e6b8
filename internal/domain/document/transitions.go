package document

import (
	"fmt"
	"sort"

	"github.com/procure/backend/internal/domain/shared"
)

// transitionKey addresses one row of the workflow transition table.
// Extent participates in the key only where the outcome depends on it
// (purchase request awards); extent-agnostic rows use ExtentNone and
// are matched as a fallback.
type transitionKey struct {
	docType Type
	from    Status
	action  Action
	extent  Extent
}

type transitionRule struct {
	to      Status
	effects []EffectKind
}

// transitions is the closed transition table. Any (type, status, action)
// pair absent from the table is an illegal transition.
var transitions = map[transitionKey]transitionRule{
	// Purchase Request
	{TypePurchaseRequest, StatusDraft, ActionSubmit, ExtentNone}:                            {to: StatusPending},
	{TypePurchaseRequest, StatusPending, ActionApproveCashAvailability, ExtentNone}:         {to: StatusApprovedCashAvailable},
	{TypePurchaseRequest, StatusApprovedCashAvailable, ActionApprove, ExtentNone}:           {to: StatusApproved},
	{TypePurchaseRequest, StatusPending, ActionDisapprove, ExtentNone}:                      {to: StatusDisapproved},
	{TypePurchaseRequest, StatusApprovedCashAvailable, ActionDisapprove, ExtentNone}:        {to: StatusDisapproved},
	{TypePurchaseRequest, StatusApproved, ActionIssueRfq, ExtentNone}:                       {to: StatusForCanvassing, effects: []EffectKind{EffectSpawnQuotationRequest}},
	{TypePurchaseRequest, StatusForCanvassing, ActionRecanvass, ExtentNone}:                 {to: StatusForRecanvassing},
	{TypePurchaseRequest, StatusForCanvassing, ActionCompleteCanvassing, ExtentNone}:        {to: StatusForAbstract},
	{TypePurchaseRequest, StatusForRecanvassing, ActionCompleteCanvassing, ExtentNone}:      {to: StatusForAbstract},
	{TypePurchaseRequest, StatusForAbstract, ActionAward, ExtentPartial}:                    {to: StatusPartiallyAwarded},
	{TypePurchaseRequest, StatusForAbstract, ActionAward, ExtentFull}:                       {to: StatusAwarded},
	{TypePurchaseRequest, StatusPartiallyAwarded, ActionAward, ExtentFull}:                  {to: StatusAwarded},
	{TypePurchaseRequest, StatusPartiallyAwarded, ActionRecanvass, ExtentNone}:              {to: StatusForRecanvassing},
	{TypePurchaseRequest, StatusAwarded, ActionComplete, ExtentNone}:                        {to: StatusCompleted},
	{TypePurchaseRequest, StatusDraft, ActionCancel, ExtentNone}:                            {to: StatusCancelled},
	{TypePurchaseRequest, StatusPending, ActionCancel, ExtentNone}:                          {to: StatusCancelled},
	{TypePurchaseRequest, StatusApprovedCashAvailable, ActionCancel, ExtentNone}:            {to: StatusCancelled},
	{TypePurchaseRequest, StatusApproved, ActionCancel, ExtentNone}:                         {to: StatusCancelled},
	{TypePurchaseRequest, StatusForCanvassing, ActionCancel, ExtentNone}:                    {to: StatusCancelled},
	{TypePurchaseRequest, StatusForRecanvassing, ActionCancel, ExtentNone}:                  {to: StatusCancelled},
	{TypePurchaseRequest, StatusForAbstract, ActionCancel, ExtentNone}:                      {to: StatusCancelled},
	{TypePurchaseRequest, StatusPartiallyAwarded, ActionCancel, ExtentNone}:                 {to: StatusCancelled},
	{TypePurchaseRequest, StatusAwarded, ActionCancel, ExtentNone}:                          {to: StatusCancelled},

	// Request for Quotation
	{TypeRequestForQuotation, StatusDraft, ActionIssue, ExtentNone}:      {to: StatusCanvassing},
	{TypeRequestForQuotation, StatusCanvassing, ActionComplete, ExtentNone}: {to: StatusCompleted},
	{TypeRequestForQuotation, StatusDraft, ActionCancel, ExtentNone}:      {to: StatusCancelled},
	{TypeRequestForQuotation, StatusCanvassing, ActionCancel, ExtentNone}: {to: StatusCancelled},

	// Abstract of Quotation
	{TypeAbstractOfQuotation, StatusDraft, ActionSubmit, ExtentNone}:    {to: StatusPending},
	{TypeAbstractOfQuotation, StatusPending, ActionApprove, ExtentNone}: {to: StatusApproved},
	{TypeAbstractOfQuotation, StatusApproved, ActionAward, ExtentFull}:    {to: StatusAwarded, effects: []EffectKind{EffectSpawnPurchaseOrders, EffectAdvanceRequest}},
	{TypeAbstractOfQuotation, StatusApproved, ActionAward, ExtentPartial}: {to: StatusAwarded, effects: []EffectKind{EffectSpawnPurchaseOrders, EffectAdvanceRequest}},

	// Purchase Order
	{TypePurchaseOrder, StatusDraft, ActionSubmit, ExtentNone}:    {to: StatusPending},
	{TypePurchaseOrder, StatusPending, ActionApprove, ExtentNone}: {to: StatusApproved},
	{TypePurchaseOrder, StatusApproved, ActionIssue, ExtentNone}:  {to: StatusIssued},
	{TypePurchaseOrder, StatusIssued, ActionReceive, ExtentNone}:  {to: StatusReceived, effects: []EffectKind{EffectRegisterSupplies}},

	// Inspection & Acceptance Report
	{TypeInspectionReport, StatusDraft, ActionSubmit, ExtentNone}:      {to: StatusPending},
	{TypeInspectionReport, StatusPending, ActionInspect, ExtentNone}:   {to: StatusInspected},
	{TypeInspectionReport, StatusInspected, ActionAccept, ExtentPartial}: {to: StatusPartiallyAccepted},
	{TypeInspectionReport, StatusInspected, ActionAccept, ExtentFull}:    {to: StatusAccepted},

	// Obligation Request
	{TypeObligationRequest, StatusDraft, ActionSubmit, ExtentNone}:       {to: StatusPending},
	{TypeObligationRequest, StatusPending, ActionObligate, ExtentNone}:   {to: StatusObligated},
	{TypeObligationRequest, StatusPending, ActionDisapprove, ExtentNone}: {to: StatusDisapproved},

	// Disbursement Voucher
	{TypeDisbursementVoucher, StatusDraft, ActionSubmit, ExtentNone}:         {to: StatusPending},
	{TypeDisbursementVoucher, StatusPending, ActionDisapprove, ExtentNone}:   {to: StatusDisapproved},
	{TypeDisbursementVoucher, StatusPending, ActionSetForPayment, ExtentNone}: {to: StatusForPayment},
	{TypeDisbursementVoucher, StatusForPayment, ActionPay, ExtentNone}:       {to: StatusPaid},

	// Inventory Issuance
	{TypeInventoryIssuance, StatusDraft, ActionSubmit, ExtentNone}:    {to: StatusPending},
	{TypeInventoryIssuance, StatusPending, ActionApprove, ExtentNone}: {to: StatusApproved},
	{TypeInventoryIssuance, StatusApproved, ActionIssue, ExtentNone}:  {to: StatusIssued, effects: []EffectKind{EffectDeductSupplies}},
	{TypeInventoryIssuance, StatusDraft, ActionCancel, ExtentNone}:    {to: StatusCancelled},
	{TypeInventoryIssuance, StatusPending, ActionCancel, ExtentNone}:  {to: StatusCancelled},
	{TypeInventoryIssuance, StatusApproved, ActionCancel, ExtentNone}: {to: StatusCancelled},
}

// Transition resolves one row of the transition table. It returns the
// resulting status and the effects the propagator must apply, or an
// ILLEGAL_TRANSITION error listing the actions allowed in the current
// status. Extent-qualified rows are matched first, then the
// extent-agnostic row.
func Transition(t Type, from Status, action Action, extent Extent) (Status, []Effect, error) {
	if rule, ok := transitions[transitionKey{t, from, action, extent}]; ok {
		return rule.to, buildEffects(rule.effects, extent), nil
	}
	if extent != ExtentNone {
		if rule, ok := transitions[transitionKey{t, from, action, ExtentNone}]; ok {
			return rule.to, buildEffects(rule.effects, extent), nil
		}
	}
	return "", nil, shared.NewDomainError("ILLEGAL_TRANSITION",
		fmt.Sprintf("action %q is not allowed for %s in status %q (allowed: %v)",
			action, t, from, AllowedActions(t, from)))
}

func buildEffects(kinds []EffectKind, extent Extent) []Effect {
	if len(kinds) == 0 {
		return nil
	}
	effects := make([]Effect, 0, len(kinds))
	for _, k := range kinds {
		effects = append(effects, Effect{Kind: k, Extent: extent})
	}
	return effects
}

// AllowedActions returns the distinct actions with at least one table
// row for the given type and status, sorted for stable error messages.
func AllowedActions(t Type, from Status) []Action {
	seen := make(map[Action]bool)
	for key := range transitions {
		if key.docType == t && key.from == from && !seen[key.action] {
			seen[key.action] = true
		}
	}
	actions := make([]Action, 0, len(seen))
	for a := range seen {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
