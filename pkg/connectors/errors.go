package connectors

import (
	"errors"
	"fmt"
)

// ErrorClass classifies connector errors for programmatic handling.
type ErrorClass string

const (
	// ClassNotFound indicates the requested item does not exist.
	ClassNotFound ErrorClass = "not_found"

	// ClassExists indicates an item with that name already exists and
	// overwrite was not requested.
	ClassExists ErrorClass = "exists"

	// ClassValidation indicates invalid input.
	ClassValidation ErrorClass = "validation"

	// ClassInternal indicates a backend failure.
	ClassInternal ErrorClass = "internal"
)

// Error is a classified connector error with item context.
type Error struct {
	Class   ErrorClass
	Library Library
	Name    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Class {
	case ClassNotFound:
		return fmt.Sprintf("item %q not found in library %q", e.Name, e.Library)
	case ClassExists:
		return fmt.Sprintf("item %q already exists in library %q", e.Name, e.Library)
	default:
		if e.Name != "" {
			return fmt.Sprintf("[%s] %s/%s: %v", e.Class, e.Library, e.Name, e.Err)
		}
		return fmt.Sprintf("[%s] %v", e.Class, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// NewNotFoundError reports a missing item.
func NewNotFoundError(lib Library, name string) *Error {
	return &Error{Class: ClassNotFound, Library: lib, Name: name}
}

// NewExistsError reports a name collision.
func NewExistsError(lib Library, name string) *Error {
	return &Error{Class: ClassExists, Library: lib, Name: name}
}

// NewValidationError reports invalid input.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Class: ClassValidation, Err: fmt.Errorf(format, args...)}
}

// IsNotFound reports whether err is a missing-item error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Class == ClassNotFound
}

// IsExists reports whether err is a name-collision error.
func IsExists(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Class == ClassExists
}

// IsValidation reports whether err is an invalid-input error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Class == ClassValidation
}
