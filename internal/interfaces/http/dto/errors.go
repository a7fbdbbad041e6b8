package dto

import "net/http"

// Transport-level error codes. Domain codes (ILLEGAL_TRANSITION,
// INSUFFICIENT_STOCK, ...) pass through unchanged; these cover errors
// raised at the HTTP boundary itself.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps workflow error codes to HTTP status codes.
// Codes absent from the map resolve to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeInternal:   http.StatusInternalServerError,

	// Input and ledger validation -> 400 Bad Request
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"UNSUPPORTED_TYPE": http.StatusBadRequest,

	// Workflow conflicts -> 409 Conflict
	"ILLEGAL_TRANSITION":      http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"ALREADY_EXISTS":          http.StatusConflict,

	// Business rule failures -> 422 Unprocessable Entity
	"CASCADE_FAILURE":    http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
