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
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Not allowed to perform this action")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidTransition   = NewDomainError("INVALID_TRANSITION", "Transition not allowed from current status")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrDuplicateDispute    = NewDomainError("DUPLICATE_DISPUTE", "An open dispute already exists for this order")
	ErrAlreadyVoted        = NewDomainError("ALREADY_VOTED", "Voter has already voted on this dispute")
	ErrVotingExpired       = NewDomainError("VOTING_EXPIRED", "The voting window for this dispute has closed")
	ErrDisputeClosed       = NewDomainError("DISPUTE_CLOSED", "Dispute is not accepting this operation")
	ErrDuplicateReview     = NewDomainError("DUPLICATE_REVIEW", "A review for this order already exists")
	ErrInternal            = NewDomainError("INTERNAL_ERROR", "Internal error")
)
