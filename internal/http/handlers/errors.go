// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on message text. Generic codes mirror HTTP status semantics, while the
// *_failed codes name the operation that hit a server-side error.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeCreateFailed = "create_failed"
	ErrCodeListFailed   = "list_failed"
	ErrCodeDeleteFailed = "delete_failed"
)

// User-facing messages kept byte-compatible with existing front ends.
const (
	msgNoData          = "No data provided"
	msgInvalidJSON     = "Invalid JSON body"
	msgMissingFields   = "Missing required fields"
	msgSubmitted       = "Contact submitted successfully"
	msgDeleted         = "Contact deleted successfully"
	msgNotFound        = "not found"
	msgBodyTooLarge    = "request body too large"
	msgIdempotencyBusy = "a request with this Idempotency-Key is in progress"
)
