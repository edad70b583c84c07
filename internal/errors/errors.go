package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// MalformedTemplateArgument indicates a template argument that could not be cleaned.
	// Always recovered locally: the argument is discarded.
	MalformedTemplateArgument ErrorCode = "MALFORMED_TEMPLATE_ARGUMENT"
	// UnresolvableTypeReference indicates a type name that matches no known element.
	// Recovered: the reference falls back to the raw name string.
	UnresolvableTypeReference ErrorCode = "UNRESOLVABLE_TYPE_REFERENCE"
	// DuplicateIdentity indicates two live elements share an identity within a
	// scope that requires distinctness. This is an internal invariant violation
	// and is always fatal.
	DuplicateIdentity ErrorCode = "DUPLICATE_IDENTITY"
	// CyclicGeneralization indicates an inheritance edge that would close a cycle.
	// Recovered: the edge is dropped.
	CyclicGeneralization ErrorCode = "CYCLIC_GENERALIZATION"
	// DegenerateAssociation indicates an association whose ends cannot be kept
	// distinct. Recovered: the association is dropped.
	DegenerateAssociation ErrorCode = "DEGENERATE_ASSOCIATION"
	// RelationSuppressed indicates a non-field relation that lost the tie-break
	// against a class-owned association between the same pair.
	RelationSuppressed ErrorCode = "RELATION_SUPPRESSED"
	// FactsInvalid indicates the analyzer fact set could not be decoded.
	FactsInvalid ErrorCode = "FACTS_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ModelError represents a cuml error with a stable code and message
type ModelError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ModelError
func New(code ErrorCode, message string, cause error) *ModelError {
	return &ModelError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *ModelError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ModelError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ModelError) WithDetails(details interface{}) *ModelError {
	e.Details = details
	return e
}

// Diagnostic records a recovered condition encountered while building the
// model. Diagnostics never abort the pipeline; they are reported alongside
// the finished graph.
type Diagnostic struct {
	Code    ErrorCode `json:"code"`
	Subject string    `json:"subject"` // qualified name or relation display name
	Message string    `json:"message"`
}

// String formats the diagnostic for log output
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Subject, d.Message)
}
