package application

import "errors"

var (
	// ErrUnauthorized is returned when no valid authenticated identity is present.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the acting identity lacks the role or
	// department access an operation requires.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned for any failed authentication attempt.
	// Unknown employee id and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrInvalidToken is returned for any token that fails verification.
	// Bad signature, malformed structure, missing expiry, and expiry itself
	// all collapse into this single outcome.
	ErrInvalidToken = errors.New("application: invalid token")
	// ErrDuplicate is returned when a unique attribute already exists.
	ErrDuplicate = errors.New("application: already exists")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// BusinessRuleError reports a rejected state transition or other business rule
// violation. The reason is human readable and safe to return to callers.
type BusinessRuleError struct {
	Reason string
}

// Error implements the error interface.
func (b *BusinessRuleError) Error() string {
	if b == nil {
		return ""
	}
	return b.Reason
}

// NewBusinessRuleError wraps a human readable rule violation.
func NewBusinessRuleError(reason string) *BusinessRuleError {
	return &BusinessRuleError{Reason: reason}
}
