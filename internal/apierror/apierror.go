// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package so that internal
// details (stack traces, SQL errors) never reach a response body.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// NewValidationDetail is NewValidation with a caller-supplied summary line.
func NewValidationDetail(detail string, fields map[string]string) *ValidationError {
	if detail == "" {
		detail = "Validation failed"
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return &ValidationError{Detail: detail, Fields: fields}
}

// LookupError is the body of the lightweight /api/product lookups, which
// keep a flat {"error": "..."} shape for point-of-sale clients.
type LookupError struct {
	Error string `json:"error"`
}
