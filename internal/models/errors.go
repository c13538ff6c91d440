// Package models holds the operational records synchronized with the remote store.
package models

import "fmt"

// ValidationError reports input that does not satisfy a record's schema.
// Validation failures are terminal and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
