package service

import (
	"errors"
	"fmt"

	"srm-service/internal/model"
)

var (
	// ErrUnauthenticated means no valid principal backs the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the principal lacks the required terminal or
	// menu capability.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced principal, supplier, role or menu
	// does not exist.
	ErrNotFound = errors.New("not found")
)

// InvalidTransitionError reports a lifecycle event that is not legal from
// the supplier's current status. No writes happen when it is returned.
type InvalidTransitionError struct {
	From  model.SupplierStatus
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a supplier in status %q", e.Event, e.From)
}

// ValidationError reports malformed input: missing reason text, empty role
// code, unknown terminal and the like.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
