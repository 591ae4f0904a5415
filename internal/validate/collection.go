package validate

import (
	"reflect"

	"record-mapper/internal/record"
)

type collection struct {
	item Validator
}

// Collection validates every item of a slice or array with item.
// nil is valid; any other non-list value is reported under CollectionInvalid.
// Item reports are nested under CollectionInvalidInner keyed by decimal index.
func Collection(item Validator) Validator {
	return &collection{item: item}
}

func (c *collection) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Violation(CollectionInvalid, "expecting a list")
	}

	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil
	}

	var inner Report

	for i := range rv.Len() {
		if r := c.item.Validate(rv.Index(i).Interface()); !r.Valid() {
			if inner == nil {
				inner = make(Report)
			}

			inner[indexKey(i)] = Entry{Inner: r}
		}
	}

	return Nested(CollectionInvalidInner, inner)
}

// FieldRule validates one named field of a record.
type FieldRule struct {
	Name      string
	Validator Validator
}

type fieldData struct {
	fields []FieldRule
}

// FieldData validates the named fields of a record in order. The value must be
// record-like (see record.ViewOf), otherwise it is reported under FieldDataInvalid.
// An absent field is validated as nil. Field reports are nested under
// FieldDataInvalidInner keyed by field name.
func FieldData(fields ...FieldRule) Validator {
	return &fieldData{fields: fields}
}

func (f *fieldData) Validate(value any) Report {
	view, ok := record.ViewOf(value)
	if !ok {
		return Violation(FieldDataInvalid, "expecting a record")
	}

	var inner Report

	for _, field := range f.fields {
		v, _ := view.Get(field.Name)

		if r := field.Validator.Validate(v); !r.Valid() {
			if inner == nil {
				inner = make(Report)
			}

			inner[field.Name] = Entry{Inner: r}
		}
	}

	return Nested(FieldDataInvalidInner, inner)
}
