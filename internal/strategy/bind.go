package strategy

import (
	"fmt"
	"reflect"

	"record-mapper/internal/metadata"
	"record-mapper/internal/scalar"
)

// Getter reads a field from a pointer to a struct.
type Getter func(obj reflect.Value) (any, error)

// Setter writes a field of a pointer to a struct.
type Setter func(obj reflect.Value, value any) error

var errorType = reflect.TypeFor[error]()

// Bind resolves the accessors of a field of struct type typ. An absent
// accessor yields a nil Getter or Setter.
func Bind(typ reflect.Type, acc metadata.Accessors) (Getter, Setter, error) {
	get, err := bindGetter(typ, acc.Getter)
	if err != nil {
		return nil, nil, fmt.Errorf("getter: %w", err)
	}

	set, err := bindSetter(typ, acc.Setter)
	if err != nil {
		return nil, nil, fmt.Errorf("setter: %w", err)
	}

	return get, set, nil
}

func bindGetter(typ reflect.Type, a metadata.Accessor) (Getter, error) {
	switch a.Kind {
	case metadata.AccessDirect:
		f, err := structField(typ, a.Name)
		if err != nil {
			return nil, err
		}

		return func(obj reflect.Value) (any, error) {
			return obj.Elem().FieldByIndex(f.Index).Interface(), nil
		}, nil

	case metadata.AccessMethod:
		m, err := method(typ, a.Name)
		if err != nil {
			return nil, err
		}

		if m.Type.NumOut() == 0 {
			return nil, fmt.Errorf("%w: %s returns nothing", metadata.ErrMethodArity, a.Name)
		}

		return func(obj reflect.Value) (any, error) {
			out := obj.Method(m.Index).Call(nil)
			if err := trailingError(out); err != nil {
				return nil, err
			}

			return out[0].Interface(), nil
		}, nil

	default:
		return nil, nil
	}
}

func bindSetter(typ reflect.Type, a metadata.Accessor) (Setter, error) {
	switch a.Kind {
	case metadata.AccessDirect:
		f, err := structField(typ, a.Name)
		if err != nil {
			return nil, err
		}

		return func(obj reflect.Value, value any) error {
			field := obj.Elem().FieldByIndex(f.Index)

			v, err := Assign(field.Type(), value)
			if err != nil {
				return err
			}

			field.Set(v)

			return nil
		}, nil

	case metadata.AccessMethod:
		m, err := method(typ, a.Name)
		if err != nil {
			return nil, err
		}

		// In(0) is the receiver
		if m.Type.NumIn() < 2 {
			return nil, fmt.Errorf("%w: %s takes no value", metadata.ErrMethodArity, a.Name)
		}

		param := m.Type.In(1)

		return func(obj reflect.Value, value any) error {
			v, err := Assign(param, value)
			if err != nil {
				return err
			}

			return trailingError(obj.Method(m.Index).Call([]reflect.Value{v}))
		}, nil

	default:
		return nil, nil
	}
}

func structField(typ reflect.Type, name string) (reflect.StructField, error) {
	f, ok := typ.FieldByName(name)
	if !ok || !f.IsExported() {
		return f, fmt.Errorf("%w: %s has no exported field %s", metadata.ErrMethodMissing, typ, name)
	}

	return f, nil
}

func method(typ reflect.Type, name string) (reflect.Method, error) {
	m, ok := reflect.PointerTo(typ).MethodByName(name)
	if !ok {
		return m, fmt.Errorf("%w: %s", metadata.ErrMethodMissing, name)
	}

	return m, nil
}

func trailingError(out []reflect.Value) error {
	if len(out) == 0 {
		return nil
	}

	last := out[len(out)-1]
	if last.Type() != errorType || last.IsNil() {
		return nil
	}

	return last.Interface().(error)
}

// Assign converts value so it can be stored in a location of type t.
// nil yields the zero value. Scalars convert across kinds when lossless,
// pointers are taken or followed as needed; anything else is invalid data.
func Assign(t reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(value)

	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)

		return p, nil
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(t):
		return rv.Elem(), nil
	}

	if kind := scalar.FromReflectType(t); kind != 0 {
		out, err := scalar.Convert(value, kind, scalar.CategoryDefault)
		if err == nil {
			return reflect.ValueOf(out).Convert(t), nil
		}

		return reflect.Value{}, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	if t.Kind() == reflect.Pointer {
		if v, err := Assign(t.Elem(), value); err == nil {
			p := reflect.New(t.Elem())
			p.Elem().Set(v)

			return p, nil
		}
	}

	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, invalid("cannot assign %T to %s", value, t)
}
