package dto

import "net/http"

// Error codes shared between the domain layer and the API surface
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeDuplicateDispute  = "DUPLICATE_DISPUTE"
	ErrCodeAlreadyVoted      = "ALREADY_VOTED"
	ErrCodeVotingExpired     = "VOTING_EXPIRED"
	ErrCodeDisputeClosed     = "DISPUTE_CLOSED"
	ErrCodeDuplicateReview   = "DUPLICATE_REVIEW"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Conflicts with
// concurrent writers (lost CAS, duplicate inserts) are 409; state that makes
// the request unserviceable as asked is 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeInvalidTransition: http.StatusConflict,
	ErrCodeDuplicateDispute:  http.StatusConflict,
	ErrCodeAlreadyVoted:      http.StatusConflict,
	ErrCodeDuplicateReview:   http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeVotingExpired:     http.StatusUnprocessableEntity,
	ErrCodeDisputeClosed:     http.StatusUnprocessableEntity,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
