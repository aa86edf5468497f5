// services/errors.go
package services

import "errors"

// Error categories returned by the queue. Callers match them with errors.Is;
// the returned errors wrap them with the offending id or field.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("patient not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid patient state")
)
