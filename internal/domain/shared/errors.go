package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrIllegalTransition      = NewDomainError("ILLEGAL_TRANSITION", "Action not allowed in current status")
	ErrInvalidQuantity        = NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	ErrInvalidAmount          = NewDomainError("INVALID_AMOUNT", "Amount violates non-negativity or precision rules")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Document is being modified by another request")
	ErrCascadeFailure         = NewDomainError("CASCADE_FAILURE", "A downstream propagation step failed")
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient supply available for issuance")
)
