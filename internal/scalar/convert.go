package scalar

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrNotConvertible is returned when a value cannot be converted to a kind.
var ErrNotConvertible = errors.New("value is not convertible")

var (
	errRange     = errors.New("out of range")
	errPrecision = errors.New("loses precision")
)

// Convert converts v to the Go type of kind to, using only the conversion
// families in allowed. Converting to the kind v already has always succeeds
// and yields the plain Go type, e.g. a named string type becomes string.
func Convert(v any, to Kind, allowed Category) (any, error) {
	from := Of(v)
	if from == 0 || to.GoType() == nil {
		return nil, fmt.Errorf("%w: %T to %s", ErrNotConvertible, v, to.Name())
	}

	rv := reflect.ValueOf(v)
	if from == to {
		return rv.Convert(to.GoType()).Interface(), nil
	}

	cat := categoryOf(from, to)
	if cat == CategoryNone || allowed&cat == 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNotConvertible, from.Name(), to.Name())
	}

	out, err := convert(rv, from, to, cat)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %v to %s: %w", ErrNotConvertible, from.Name(), v, to.Name(), err)
	}

	return out, nil
}

func convert(rv reflect.Value, from, to Kind, cat Category) (any, error) {
	switch cat {
	case CategorySafeNumber, CategoryUnsafeNumber:
		return number(rv, from, to)

	case CategoryTextNumber:
		if from != KindString {
			return formatNumber(rv, from), nil
		}

		return parseNumber(rv.String(), to)

	case CategoryNumericBool:
		if from == KindBool {
			var i int64
			if rv.Bool() {
				i = 1
			}

			return number(reflect.ValueOf(i), KindInt64, to)
		}

		switch i, err := integer(rv, from); {
		case err != nil:
			return nil, err
		case i == 0 || i == 1:
			return i == 1, nil
		default:
			return nil, errRange
		}

	case CategoryTextualBool:
		if from == KindBool {
			return strconv.FormatBool(rv.Bool()), nil
		}

		return parseBool(rv.String())

	case CategoryDatetime:
		if from == KindTime {
			return rv.Interface().(time.Time).Format(time.RFC3339Nano), nil
		}

		return time.Parse(time.RFC3339Nano, rv.String())

	case CategoryTimestamp:
		if from == KindTime {
			return number(reflect.ValueOf(rv.Interface().(time.Time).Unix()), KindInt64, to)
		}

		i, err := integer(rv, from)
		if err != nil {
			return nil, err
		}

		return time.Unix(i, 0).UTC(), nil

	case CategoryDuration:
		if from == KindDuration {
			return time.Duration(rv.Int()).String(), nil
		}

		return time.ParseDuration(rv.String())

	case CategoryNanoseconds:
		if from == KindDuration {
			return number(reflect.ValueOf(rv.Int()), KindInt64, to)
		}

		i, err := integer(rv, from)
		if err != nil {
			return nil, err
		}

		return time.Duration(i), nil

	case CategorySeconds:
		if from == KindDuration {
			return number(reflect.ValueOf(time.Duration(rv.Int()).Seconds()), KindFloat64, to)
		}

		f := rv.Float()
		if math.IsNaN(f) || math.Abs(f) > math.MaxInt64/float64(time.Second) {
			return nil, errRange
		}

		return time.Duration(f * float64(time.Second)), nil
	}

	return nil, errRange
}

// number converts between number kinds, failing on overflow or precision loss.
func number(rv reflect.Value, from, to Kind) (any, error) {
	goType := to.GoType()

	switch {
	case from.IsFloat() && to.IsFloat():
		f := rv.Float()
		if to == KindFloat32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, errRange
		}

		return reflect.ValueOf(f).Convert(goType).Interface(), nil

	case from.IsFloat():
		f := rv.Float()
		if f != math.Trunc(f) {
			return nil, errPrecision
		}

		if to.IsSigned() {
			if f < math.MinInt64 || f >= math.MaxInt64 || !fitsSigned(int64(f), to) {
				return nil, errRange
			}

			return reflect.ValueOf(int64(f)).Convert(goType).Interface(), nil
		}

		if f < 0 || f >= math.MaxUint64 || !fitsUnsigned(uint64(f), to) {
			return nil, errRange
		}

		return reflect.ValueOf(uint64(f)).Convert(goType).Interface(), nil

	case from.IsSigned():
		i := rv.Int()

		switch {
		case to.IsFloat():
			if !exactFloat(uint64(abs(i)), to) {
				return nil, errPrecision
			}
		case to.IsSigned():
			if !fitsSigned(i, to) {
				return nil, errRange
			}
		default:
			if i < 0 || !fitsUnsigned(uint64(i), to) {
				return nil, errRange
			}
		}

		return reflect.ValueOf(i).Convert(goType).Interface(), nil

	default:
		u := rv.Uint()

		switch {
		case to.IsFloat():
			if !exactFloat(u, to) {
				return nil, errPrecision
			}
		case to.IsSigned():
			if u > math.MaxInt64 || !fitsSigned(int64(u), to) {
				return nil, errRange
			}
		default:
			if !fitsUnsigned(u, to) {
				return nil, errRange
			}
		}

		return reflect.ValueOf(u).Convert(goType).Interface(), nil
	}
}

func fitsSigned(i int64, to Kind) bool {
	n := to.Bits()
	if n == 64 {
		return true
	}

	return i >= -(1<<(n-1)) && i < 1<<(n-1)
}

func fitsUnsigned(u uint64, to Kind) bool {
	n := to.Bits()
	if n == 64 {
		return true
	}

	return u < 1<<n
}

func exactFloat(magnitude uint64, to Kind) bool {
	limit := uint64(1) << 53
	if to == KindFloat32 {
		limit = 1 << 24
	}

	return magnitude <= limit
}

func abs(i int64) int64 {
	if i < 0 {
		return -i
	}

	return i
}

// integer reads an integer kind as int64.
func integer(rv reflect.Value, from Kind) (int64, error) {
	if from.IsSigned() {
		return rv.Int(), nil
	}

	u := rv.Uint()
	if u > math.MaxInt64 {
		return 0, errRange
	}

	return int64(u), nil
}

func formatNumber(rv reflect.Value, from Kind) string {
	switch {
	case from.IsSigned():
		return strconv.FormatInt(rv.Int(), 10)
	case from.IsUnsigned():
		return strconv.FormatUint(rv.Uint(), 10)
	default:
		return strconv.FormatFloat(rv.Float(), 'g', -1, from.Bits())
	}
}

func parseNumber(s string, to Kind) (any, error) {
	s = strings.TrimSpace(s)

	switch {
	case to.IsSigned():
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}

		return number(reflect.ValueOf(i), KindInt64, to)
	case to.IsUnsigned():
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}

		return number(reflect.ValueOf(u), KindUint64, to)
	default:
		f, err := strconv.ParseFloat(s, to.Bits())
		if err != nil {
			return nil, err
		}

		return number(reflect.ValueOf(f), KindFloat64, to)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}
