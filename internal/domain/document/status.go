package document

// Status is a workflow state of a procurement document.
// Each document type owns a closed set of statuses; membership is
// checked against the per-type sets below.
type Status string

const (
	StatusDraft                 Status = "draft"
	StatusPending               Status = "pending"
	StatusApprovedCashAvailable Status = "approved_cash_available"
	StatusApproved              Status = "approved"
	StatusDisapproved           Status = "disapproved"
	StatusForCanvassing         Status = "for_canvassing"
	StatusForRecanvassing       Status = "for_recanvassing"
	StatusForAbstract           Status = "for_abstract"
	StatusPartiallyAwarded      Status = "partially_awarded"
	StatusAwarded               Status = "awarded"
	StatusCompleted             Status = "completed"
	StatusCancelled             Status = "cancelled"
	StatusCanvassing            Status = "canvassing"
	StatusIssued                Status = "issued"
	StatusReceived              Status = "received"
	StatusInspected             Status = "inspected"
	StatusPartiallyAccepted     Status = "partially_accepted"
	StatusAccepted              Status = "accepted"
	StatusObligated             Status = "obligated"
	StatusForPayment            Status = "for_payment"
	StatusPaid                  Status = "paid"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// statusSets enumerates the closed status set of each document type
var statusSets = map[Type][]Status{
	TypePurchaseRequest: {
		StatusDraft, StatusPending, StatusApprovedCashAvailable, StatusApproved,
		StatusDisapproved, StatusForCanvassing, StatusForRecanvassing, StatusForAbstract,
		StatusPartiallyAwarded, StatusAwarded, StatusCompleted, StatusCancelled,
	},
	TypeRequestForQuotation: {StatusDraft, StatusCanvassing, StatusCompleted, StatusCancelled},
	TypeAbstractOfQuotation: {StatusDraft, StatusPending, StatusApproved, StatusAwarded},
	TypePurchaseOrder:       {StatusDraft, StatusPending, StatusApproved, StatusIssued, StatusReceived},
	TypeInspectionReport:    {StatusDraft, StatusPending, StatusInspected, StatusPartiallyAccepted, StatusAccepted},
	TypeObligationRequest:   {StatusDraft, StatusPending, StatusDisapproved, StatusObligated},
	TypeDisbursementVoucher: {StatusDraft, StatusPending, StatusDisapproved, StatusForPayment, StatusPaid},
	TypeInventoryIssuance:   {StatusDraft, StatusPending, StatusApproved, StatusIssued, StatusCancelled},
}

// terminalSets lists statuses with no outgoing transitions per type
var terminalSets = map[Type][]Status{
	TypePurchaseRequest:     {StatusDisapproved, StatusCompleted, StatusCancelled},
	TypeRequestForQuotation: {StatusCompleted, StatusCancelled},
	TypeAbstractOfQuotation: {StatusAwarded},
	TypePurchaseOrder:       {StatusReceived},
	TypeInspectionReport:    {StatusPartiallyAccepted, StatusAccepted},
	TypeObligationRequest:   {StatusDisapproved, StatusObligated},
	TypeDisbursementVoucher: {StatusDisapproved, StatusPaid},
	TypeInventoryIssuance:   {StatusIssued, StatusCancelled},
}

// ValidFor returns true if the status belongs to the document type's set
func (s Status) ValidFor(t Type) bool {
	for _, v := range statusSets[t] {
		if v == s {
			return true
		}
	}
	return false
}

// TerminalFor returns true if the status is terminal for the document type
func (s Status) TerminalFor(t Type) bool {
	for _, v := range terminalSets[t] {
		if v == s {
			return true
		}
	}
	return false
}

// Statuses returns the closed status set of a document type
func Statuses(t Type) []Status {
	return statusSets[t]
}
