// Package apperrors defines the error taxonomy surfaced to clients of the auth
// endpoints. Messages carried here are safe to show to a client; anything else
// is rendered as a generic internal error.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindConflict
	KindRateLimited
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// APIError is an error with a client-facing message and HTTP status.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	// RetryAfter is the advisory wait in seconds for KindRateLimited.
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Kind == KindRateLimited {
		return fmt.Sprintf("%s: %s (retry after %ds)", e.Kind, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewValidation(message string) *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewAuthentication(message string) *APIError {
	return &APIError{Kind: KindAuthentication, Status: http.StatusUnauthorized, Message: message}
}

func NewAuthorization(message string) *APIError {
	return &APIError{Kind: KindAuthorization, Status: http.StatusForbidden, Message: message}
}

func NewConflict(message string) *APIError {
	return &APIError{Kind: KindConflict, Status: http.StatusConflict, Message: message}
}

// NewRateLimited builds a 429 error carrying the advisory retry time in seconds.
func NewRateLimited(retryAfter int) *APIError {
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &APIError{
		Kind:       KindRateLimited,
		Status:     http.StatusTooManyRequests,
		Message:    "too many login attempts, try again later",
		RetryAfter: retryAfter,
	}
}

// NewInternal hides the cause from clients. Log the cause before returning this.
func NewInternal() *APIError {
	return &APIError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "internal server error"}
}

// As extracts an APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
