package strategy

import (
	"reflect"

	"record-mapper/internal/identity"
	"record-mapper/internal/metadata"
	"record-mapper/internal/record"
)

// Shape selects the container FieldData extracts into.
type Shape int

const (
	// ShapeMap extracts into a map[string]any.
	ShapeMap Shape = iota
	// ShapeRecord extracts into a *record.Ordered keeping field order.
	ShapeRecord
)

// Field is one mapped field of a FieldData strategy.
type Field struct {
	Name string
	// Get and Set are nil when the field is not read or not written.
	Get Getter
	Set Setter
	// Strategy transforms the field value; nil passes it through.
	Strategy Strategy
}

type fieldData struct {
	typ    reflect.Type
	shape  Shape
	fields []Field
}

// FieldData maps the fields of struct type typ to and from a record.
// Extraction reads every field with a getter; hydration writes every field
// with a setter whose key is present in the record, into an existing *typ.
func FieldData(typ reflect.Type, shape Shape, fields ...Field) Strategy {
	return &fieldData{typ: typ, shape: shape, fields: fields}
}

func (f *fieldData) object(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)

	switch {
	case rv.Kind() == reflect.Pointer && rv.Type().Elem() == f.typ && !rv.IsNil():
		return rv, nil
	case rv.IsValid() && rv.Type() == f.typ:
		p := reflect.New(f.typ)
		p.Elem().Set(rv)

		return p, nil
	default:
		return reflect.Value{}, invalid("expecting %s, got %T", f.typ, v)
	}
}

func (f *fieldData) Extract(from any) (any, error) {
	obj, err := f.object(from)
	if err != nil {
		return nil, err
	}

	var out record.Writer = record.Map{}
	if f.shape == ShapeRecord {
		out = record.NewOrdered()
	}

	for _, field := range f.fields {
		if field.Get == nil {
			continue
		}

		v, err := field.Get(obj)
		if err != nil {
			return nil, atPath(field.Name, err)
		}

		if field.Strategy != nil {
			if v, err = field.Strategy.Extract(v); err != nil {
				return nil, atPath(field.Name, err)
			}
		}

		out.Set(field.Name, v)
	}

	if m, ok := out.(record.Map); ok {
		return map[string]any(m), nil
	}

	return out, nil
}

func (f *fieldData) Hydrate(from, to any) (any, error) {
	view, ok := record.ViewOf(from)
	if !ok {
		return nil, invalid("expecting a record, got %T", from)
	}

	obj, err := f.object(to)
	if err != nil {
		return nil, err
	}

	for _, field := range f.fields {
		if field.Set == nil {
			continue
		}

		raw, present := view.Get(field.Name)
		if !present {
			continue
		}

		v := raw

		if field.Strategy != nil {
			var current any
			if field.Get != nil {
				current, _ = field.Get(obj)
			}

			if v, err = field.Strategy.Hydrate(raw, current); err != nil {
				return nil, atPath(field.Name, err)
			}
		}

		if err := field.Set(obj, v); err != nil {
			return nil, atPath(field.Name, err)
		}
	}

	return obj.Interface(), nil
}

type noArgObject struct {
	typ   reflect.Type
	inner Strategy
}

// NoArgObject hydrates into a fresh *typ when there is no current object and
// delegates to inner, usually a FieldData strategy. nil passes through.
func NoArgObject(typ reflect.Type, inner Strategy) Strategy {
	return &noArgObject{typ: typ, inner: inner}
}

func (n *noArgObject) Extract(from any) (any, error) {
	if isNil(from) {
		return nil, nil
	}

	return n.inner.Extract(from)
}

func (n *noArgObject) Hydrate(from, to any) (any, error) {
	if from == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(to)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(n.typ) || rv.IsNil() {
		to = reflect.New(n.typ).Interface()
	}

	return n.inner.Hydrate(from, to)
}

type identifiableValue struct {
	class    metadata.ClassID
	inner    Strategy
	identify identity.Identify
	loader   identity.Loader
}

// IdentifiableValue refers to objects of class by identifier when possible.
// Extraction returns the identifier when identify is set and the inline
// record from inner otherwise. Hydration loads scalar identifiers through
// loader and hydrates records inline through inner.
func IdentifiableValue(class metadata.ClassID, inner Strategy, identify identity.Identify, loader identity.Loader) Strategy {
	return &identifiableValue{class: class, inner: inner, identify: identify, loader: loader}
}

func (s *identifiableValue) Extract(from any) (any, error) {
	if isNil(from) {
		return nil, nil
	}

	if s.identify == nil {
		return s.inner.Extract(from)
	}

	id, ok := s.identify(from)
	if !ok {
		return nil, invalid("%T has no identifier", from)
	}

	return id, nil
}

func (s *identifiableValue) Hydrate(from, to any) (any, error) {
	if from == nil {
		return nil, nil
	}

	if _, ok := record.ViewOf(from); ok {
		return s.inner.Hydrate(from, to)
	}

	if s.loader == nil {
		return nil, invalid("%s cannot be loaded by identifier", s.class.Short())
	}

	obj, ok := s.loader.Load(s.class, from)
	if !ok {
		return nil, invalid("unknown %s identifier %v", s.class.Short(), from)
	}

	return obj, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
