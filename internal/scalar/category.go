package scalar

import (
	"fmt"
	"strings"
)

// Category is a set of conversion families Convert may use.
type Category int

const (
	CategorySafeNumber   Category = 1 << iota // int, uint, float without precision loss
	CategoryUnsafeNumber                      // int, uint, float, range and precision checked
	CategoryTextNumber                        // int, uint, float <-> string: textual number representation
	CategoryNumericBool                       // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                       // string <-> bool: yes, no, on, off, true, false
	CategoryDatetime                          // string(RFC3339Nano) <-> time.Time
	CategoryTimestamp                         // int(Unix seconds) <-> time.Time
	CategoryDuration                          // string(2h45m) <-> time.Duration
	CategoryNanoseconds                       // int(nanoseconds) <-> time.Duration
	CategorySeconds                           // float(seconds) <-> time.Duration

	CategoryAll  = (1 << iota) - 1 // all categories combined
	CategoryNone = 0               // identity conversions only
)

// CategoryDefault accepts decoded JSON and YAML numbers for any number kind
// and the textual forms of time and duration.
const CategoryDefault = CategorySafeNumber | CategoryUnsafeNumber | CategoryDatetime | CategoryDuration

var categoryNames = map[string]Category{
	"safe_number":   CategorySafeNumber,
	"unsafe_number": CategoryUnsafeNumber,
	"text_number":   CategoryTextNumber,
	"numeric_bool":  CategoryNumericBool,
	"textual_bool":  CategoryTextualBool,
	"datetime":      CategoryDatetime,
	"timestamp":     CategoryTimestamp,
	"duration":      CategoryDuration,
	"nanoseconds":   CategoryNanoseconds,
	"seconds":       CategorySeconds,
	"all":           CategoryAll,
	"none":          CategoryNone,
}

// ParseCategories combines categories by name, e.g. ["safe_number", "datetime"].
func ParseCategories(names []string) (Category, error) {
	var out Category

	for _, name := range names {
		c, ok := categoryNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown conversion category %q", name)
		}

		out |= c
	}

	return out, nil
}

// categoryOf returns the family a conversion between two distinct kinds belongs to.
func categoryOf(from, to Kind) Category {
	pair := func(a, b func(Kind) bool) bool {
		return a(from) && b(to) || b(from) && a(to)
	}

	is := func(k Kind) func(Kind) bool {
		return func(x Kind) bool { return x == k }
	}

	switch {
	case from.IsNumber() && to.IsNumber():
		if safe(from, to) {
			return CategorySafeNumber
		}

		return CategoryUnsafeNumber
	case pair(Kind.IsNumber, is(KindString)):
		return CategoryTextNumber
	case pair(Kind.IsInteger, is(KindBool)):
		return CategoryNumericBool
	case pair(is(KindString), is(KindBool)):
		return CategoryTextualBool
	case pair(is(KindString), is(KindTime)):
		return CategoryDatetime
	case pair(Kind.IsInteger, is(KindTime)):
		return CategoryTimestamp
	case pair(is(KindString), is(KindDuration)):
		return CategoryDuration
	case pair(Kind.IsInteger, is(KindDuration)):
		return CategoryNanoseconds
	case pair(Kind.IsFloat, is(KindDuration)):
		return CategorySeconds
	default:
		return CategoryNone
	}
}

// safe reports whether every value of from is exactly representable in to.
func safe(from, to Kind) bool {
	switch {
	case from.IsFloat():
		return to == KindFloat64
	case to.IsFloat():
		mantissa := 53
		if to == KindFloat32 {
			mantissa = 24
		}

		return from.Bits() < mantissa
	case from.IsSigned():
		return to.IsSigned() && to.Bits() >= from.Bits()
	case to.IsUnsigned():
		return to.Bits() >= from.Bits()
	default:
		return to.Bits() > from.Bits()
	}
}
