package validate

import (
	"record-mapper/internal/scalar"
)

type scalarRule struct {
	kind    scalar.Kind
	allowed scalar.Category
}

// Scalar checks that a value converts to kind using the allowed conversion
// categories. nil is valid.
func Scalar(kind scalar.Kind, allowed scalar.Category) Validator {
	return &scalarRule{kind: kind, allowed: allowed}
}

func (s *scalarRule) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	if _, err := scalar.Convert(value, s.kind, s.allowed); err != nil {
		return Violation(ScalarInvalid, "expecting "+s.kind.Name())
	}

	return nil
}
