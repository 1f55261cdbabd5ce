package services

import (
	"errors"
	"fmt"

	"github.com/ametel/pressbox/models"
)

var (
	// ErrNotFound mirrors the store's not-found condition at the service
	// boundary; controllers translate it to 404.
	ErrNotFound = errors.New("article not found")
	// ErrForbidden is returned when a delete confirmation token does not
	// verify against the caller's session.
	ErrForbidden = errors.New("confirmation token rejected")
	// ErrUnavailable wraps store failures that survived the single retry.
	ErrUnavailable = errors.New("article store unavailable")
)

// ValidationError carries the field errors of a rejected submission. Nothing
// is persisted when it is returned.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}
