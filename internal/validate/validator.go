package validate

import (
	"reflect"
)

// Violation keys of the built-in validators.
const (
	CollectionInvalid             = "collectionInvalid"
	CollectionInvalidInner        = "collectionInvalidInner"
	FieldDataInvalid              = "fieldDataInvalid"
	FieldDataInvalidInner         = "fieldDataInvalidInner"
	IdentifierInvalid             = "identifierInvalid"
	IdentifierUnknown             = "identifierUnknown"
	SerializableValueInvalid      = "serializableValueInvalid"
	SerializableValueInvalidInner = "serializableValueInvalidInner"
	NotNullInvalid                = "notNull"
	ScalarInvalid                 = "scalarInvalid"
	HostInvalid                   = "hostInvalid"
)

// Validator checks a value and reports its violations.
type Validator interface {
	Validate(value any) Report
}

// Func adapts a function to the Validator interface.
type Func func(value any) Report

// Validate implements Validator.
func (f Func) Validate(value any) Report {
	return f(value)
}

// IsNil reports whether v is nil or a nil pointer or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Link is one step of a Chain.
type Link struct {
	Validator Validator
	// Blocker stops the chain when this link reports violations.
	Blocker bool
}

type chain struct {
	links []Link
}

// Chain runs links in order and merges their reports. After a blocking link
// reports violations no further link runs.
func Chain(links ...Link) Validator {
	return &chain{links: links}
}

func (c *chain) Validate(value any) Report {
	var report Report

	for _, l := range c.links {
		r := l.Validator.Validate(value)
		report = report.Merge(r)

		if l.Blocker && !r.Valid() {
			break
		}
	}

	return report
}

type whatever struct{}

// Whatever accepts every value.
func Whatever() Validator {
	return whatever{}
}

func (whatever) Validate(any) Report {
	return nil
}

type notNull struct{}

// NotNull reports nil values.
func NotNull() Validator {
	return notNull{}
}

func (notNull) Validate(value any) Report {
	if IsNil(value) {
		return Violation(NotNullInvalid, "value must not be null")
	}

	return nil
}

type typeCompliant struct {
	inner Validator
}

// TypeCompliant accepts nil and delegates anything else to inner.
func TypeCompliant(inner Validator) Validator {
	return &typeCompliant{inner: inner}
}

func (t *typeCompliant) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	return t.inner.Validate(value)
}
