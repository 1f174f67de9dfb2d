package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error is returned when caller-supplied input is rejected before any rule runs.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Msg
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func New(field, msg string) error {
	return &Error{Field: field, Msg: msg}
}

func Is(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// Errors collects several validation failures for a single request.
type Errors struct {
	Errors []error
}

func (ve *Errors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		msgs[i] = err.Error()
	}

	return fmt.Sprintf("multiple validation errors: %s", strings.Join(msgs, "; "))
}

func (ve *Errors) Add(field, msg string) {
	ve.Errors = append(ve.Errors, New(field, msg))
}

// Err returns nil when nothing was collected, the single error when only one
// was, and the aggregate otherwise.
func (ve *Errors) Err() error {
	switch len(ve.Errors) {
	case 0:
		return nil
	case 1:
		return ve.Errors[0]
	}

	return ve
}

// As lets errors.As see an aggregate as a validation error.
func (ve *Errors) As(target any) bool {
	t, ok := target.(**Error)
	if !ok || len(ve.Errors) == 0 {
		return false
	}

	return errors.As(ve.Errors[0], t)
}
