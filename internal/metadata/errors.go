package metadata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateField     = errors.New("duplicate field")
	ErrMethodMissing      = errors.New("accessor method does not exist")
	ErrMethodNotPublic    = errors.New("accessor method is not exported")
	ErrMethodArity        = errors.New("accessor method has wrong number of parameters")
	ErrSubsetNotFound     = errors.New("subset not found")
	ErrInvalidDeclaration = errors.New("invalid declaration")
	ErrLiveValue          = errors.New("value cannot be stored in a metadata blob")
	ErrMalformedBlob      = errors.New("malformed metadata blob")
)

// MetadataError is a configuration error tied to a class, subset and optionally a field.
// It wraps one of the sentinel errors of this package.
type MetadataError struct {
	Class  ClassID
	Subset string
	Field  string
	Err    error
}

// NewError returns a MetadataError for a class and subset.
func NewError(class ClassID, subset, field string, err error) *MetadataError {
	return &MetadataError{Class: class, Subset: subset, Field: field, Err: err}
}

// Error implements error.
func (e *MetadataError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "metadata of %s (subset %q)", e.Class, e.Subset)

	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

// Unwrap returns the wrapped error.
func (e *MetadataError) Unwrap() error {
	return e.Err
}
