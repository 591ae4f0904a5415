package validate

import (
	"math"
	"reflect"

	"record-mapper/internal/identity"
	"record-mapper/internal/metadata"
)

type identifier struct {
	loader identity.Loader
	class  metadata.ClassID
}

// Identifier checks that a value identifies an existing object of class.
// nil is valid. Values other than integers and strings are reported under
// IdentifierInvalid without consulting the loader; identifiers the loader
// does not know are reported under IdentifierUnknown. Integral floats count
// as integers since decoded JSON numbers are float64.
func Identifier(loader identity.Loader, class metadata.ClassID) Validator {
	return &identifier{loader: loader, class: class}
}

func (i *identifier) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	if !isIdentifier(reflect.ValueOf(value)) {
		return Violation(IdentifierInvalid, "expecting an integer or string identifier")
	}

	if _, ok := i.loader.Load(i.class, value); !ok {
		return Violation(IdentifierUnknown, "no "+i.class.Short()+" with this identifier")
	}

	return nil
}

func isIdentifier(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()

		return f == math.Trunc(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}
