package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"

	"record-mapper/internal/scalar"
)

// ErrInvalidData is wrapped by errors caused by data a strategy cannot handle.
var ErrInvalidData = errors.New("invalid data")

// Strategy transforms values between their raw and Go forms.
type Strategy interface {
	// Extract returns the raw form of a Go value.
	Extract(from any) (any, error)
	// Hydrate returns the Go form of a raw value. to is the current Go value,
	// possibly nil, which the strategy may update in place.
	Hydrate(from, to any) (any, error)
}

// PathError locates a data error inside nested fields and lists.
type PathError struct {
	Path []string
	Err  error
}

// Error implements error.
func (e *PathError) Error() string {
	return strings.Join(e.Path, ".") + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

func atPath(segment string, err error) error {
	if pe, ok := err.(*PathError); ok {
		return &PathError{Path: append([]string{segment}, pe.Path...), Err: pe.Err}
	}

	return &PathError{Path: []string{segment}, Err: err}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidData}, args...)...)
}

type whatever struct{}

// Whatever passes values through unchanged in both directions.
func Whatever() Strategy {
	return whatever{}
}

func (whatever) Extract(from any) (any, error) {
	return from, nil
}

func (whatever) Hydrate(from, _ any) (any, error) {
	return from, nil
}

type scalarStrategy struct {
	kind    scalar.Kind
	raw     scalar.Kind
	allowed scalar.Category
}

// Scalar converts raw values to kind on hydration. On extraction values are
// converted to raw, or passed through when raw is zero. nil passes through.
func Scalar(kind, raw scalar.Kind, allowed scalar.Category) Strategy {
	return &scalarStrategy{kind: kind, raw: raw, allowed: allowed}
}

func (s *scalarStrategy) Extract(from any) (any, error) {
	if from == nil || s.raw == 0 {
		return from, nil
	}

	out, err := scalar.Convert(from, s.raw, scalar.CategoryAll)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	return out, nil
}

func (s *scalarStrategy) Hydrate(from, _ any) (any, error) {
	if from == nil {
		return nil, nil
	}

	out, err := scalar.Convert(from, s.kind, s.allowed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	return out, nil
}

type serializableValue struct {
	inner Strategy
}

// SerializableValue stores the raw form produced by inner as a JSON string.
func SerializableValue(inner Strategy) Strategy {
	return &serializableValue{inner: inner}
}

func (s *serializableValue) Extract(from any) (any, error) {
	v, err := s.inner.Extract(from)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, invalid("%v", err)
	}

	return string(data), nil
}

func (s *serializableValue) Hydrate(from, to any) (any, error) {
	if from == nil {
		return nil, nil
	}

	str, ok := from.(string)
	if !ok {
		return nil, invalid("expecting string, got %T", from)
	}

	var decoded any
	if err := json.Unmarshal([]byte(str), &decoded); err != nil {
		return nil, invalid("%v", err)
	}

	return s.inner.Hydrate(decoded, to)
}

type list struct {
	element  Strategy
	elemType reflect.Type
}

// List applies element to every item of a list, preserving order. Hydration
// builds a []elemType, or a []any when elemType is nil. nil passes through.
func List(element Strategy, elemType reflect.Type) Strategy {
	return &list{element: element, elemType: elemType}
}

func (l *list) Extract(from any) (any, error) {
	if from == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(from)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, invalid("expecting a list, got %T", from)
	}

	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}

	out := make([]any, rv.Len())

	for i := range out {
		v, err := l.element.Extract(rv.Index(i).Interface())
		if err != nil {
			return nil, atPath(fmt.Sprint(i), err)
		}

		out[i] = v
	}

	return out, nil
}

func (l *list) Hydrate(from, to any) (any, error) {
	if from == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(from)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, invalid("expecting a list, got %T", from)
	}

	elemType := l.elemType
	if elemType == nil {
		elemType = reflect.TypeFor[any]()
	}

	current := reflect.ValueOf(to)
	if !current.IsValid() || current.Kind() != reflect.Slice {
		current = reflect.Value{}
	}

	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, rv.Len())

	for i := range rv.Len() {
		var cur any
		if current.IsValid() && i < current.Len() {
			cur = current.Index(i).Interface()
		}

		v, err := l.element.Hydrate(rv.Index(i).Interface(), cur)
		if err != nil {
			return nil, atPath(fmt.Sprint(i), err)
		}

		item, err := Assign(elemType, v)
		if err != nil {
			return nil, atPath(fmt.Sprint(i), err)
		}

		out = reflect.Append(out, item)
	}

	return out.Interface(), nil
}
