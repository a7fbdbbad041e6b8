package document

// Type identifies a procurement document kind
type Type string

const (
	TypePurchaseRequest     Type = "purchase_request"
	TypeRequestForQuotation Type = "request_for_quotation"
	TypeAbstractOfQuotation Type = "abstract_of_quotation"
	TypePurchaseOrder       Type = "purchase_order"
	TypeInspectionReport    Type = "inspection_acceptance_report"
	TypeObligationRequest   Type = "obligation_request"
	TypeDisbursementVoucher Type = "disbursement_voucher"
	TypeInventoryIssuance   Type = "inventory_issuance"
)

var validTypes = map[Type]bool{
	TypePurchaseRequest:     true,
	TypeRequestForQuotation: true,
	TypeAbstractOfQuotation: true,
	TypePurchaseOrder:       true,
	TypeInspectionReport:    true,
	TypeObligationRequest:   true,
	TypeDisbursementVoucher: true,
	TypeInventoryIssuance:   true,
}

// IsValid returns true if the type is a known document type
func (t Type) IsValid() bool {
	return validTypes[t]
}

// String returns the string representation of the type
func (t Type) String() string {
	return string(t)
}

// Action is a workflow action requested against a document
type Action string

const (
	ActionSubmit                  Action = "submit"
	ActionApproveCashAvailability Action = "approve_cash_availability"
	ActionApprove                 Action = "approve"
	ActionDisapprove              Action = "disapprove"
	ActionIssueRfq                Action = "issue_rfq"
	ActionRecanvass               Action = "recanvass"
	ActionCompleteCanvassing      Action = "complete_canvassing"
	ActionAward                   Action = "award"
	ActionCancel                  Action = "cancel"
	ActionIssue                   Action = "issue"
	ActionComplete                Action = "complete"
	ActionInspect                 Action = "inspect"
	ActionAccept                  Action = "accept"
	ActionObligate                Action = "obligate"
	ActionSetForPayment           Action = "set_for_payment"
	ActionPay                     Action = "pay"
	ActionReceive                 Action = "receive"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// Extent qualifies award and accept actions as covering all items or a subset
type Extent string

const (
	ExtentNone    Extent = ""
	ExtentFull    Extent = "full"
	ExtentPartial Extent = "partial"
)

// IsValid returns true if the extent is a recognized value
func (e Extent) IsValid() bool {
	return e == ExtentNone || e == ExtentFull || e == ExtentPartial
}
