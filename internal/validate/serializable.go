package validate

import (
	"errors"

	"github.com/goccy/go-json"
)

// InvalidDataError is returned by an Unserialize function when the input is
// malformed. Its violations are reported as they are.
type InvalidDataError struct {
	Violations Report
}

// Error implements error.
func (e *InvalidDataError) Error() string {
	return "invalid data: " + e.Violations.String()
}

// Unserialize decodes a serialized value.
type Unserialize func(s string) (any, error)

// SerializedFormatInvalid is the violation key used by UnserializeJSON.
const SerializedFormatInvalid = "serializedFormatInvalid"

// UnserializeJSON decodes JSON. Malformed input yields an *InvalidDataError.
func UnserializeJSON(s string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, &InvalidDataError{Violations: Violation(SerializedFormatInvalid, err.Error())}
	}

	return out, nil
}

type serializableValue struct {
	inner       Validator
	unserialize Unserialize
}

// SerializableValue decodes a string with unserialize and validates the result
// with inner. nil is valid; non-strings are reported under SerializableValueInvalid.
// Decoding and inner violations are nested under SerializableValueInvalidInner.
func SerializableValue(inner Validator, unserialize Unserialize) Validator {
	if unserialize == nil {
		unserialize = UnserializeJSON
	}

	return &serializableValue{inner: inner, unserialize: unserialize}
}

func (s *serializableValue) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return Violation(SerializableValueInvalid, "expecting string")
	}

	decoded, err := s.unserialize(str)
	if err != nil {
		var invalid *InvalidDataError
		if errors.As(err, &invalid) {
			return Nested(SerializableValueInvalidInner, invalid.Violations)
		}

		return Violation(SerializableValueInvalid, err.Error())
	}

	return Nested(SerializableValueInvalidInner, s.inner.Validate(decoded))
}
