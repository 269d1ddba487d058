package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeEmptySource       = "EMPTY_SOURCE"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
	ErrCodeUnknownMetric     = "UNKNOWN_METRIC"
	ErrCodeInvalidArguments  = "INVALID_ARGUMENTS"
	ErrCodeDivisionByZero    = "DIVISION_BY_ZERO"
	ErrCodeEmbeddingMismatch = "EMBEDDING_MISMATCH"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Indexing and persistence errors
var (
	ErrEmptySource  = NewDomainError(ErrCodeEmptySource, "no documents yielded any chunk")
	ErrIndexMissing = NewDomainError(ErrCodePersistence, "persisted index missing or corrupt, rebuild required")
)

// Retrieval errors
var (
	ErrEmbeddingMismatch = NewDomainError(ErrCodeEmbeddingMismatch, "query embedding does not match index embedding space")
)

// Metric registry errors
var (
	ErrUnknownMetric  = NewDomainError(ErrCodeUnknownMetric, "metric is not registered")
	ErrDivisionByZero = NewDomainError(ErrCodeDivisionByZero, "metric denominator is zero")
)
