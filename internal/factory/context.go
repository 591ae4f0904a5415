package factory

import (
	"fmt"
	"reflect"

	"record-mapper/internal/metadata"
	"record-mapper/internal/scalar"
	"record-mapper/internal/strategy"
	"record-mapper/internal/validate"
)

// Option keys understood by the builtin rules.
const (
	OptClass  = "class"
	OptSubset = "subset"
	OptLinks  = "links"
	OptItem   = "item"
	OptRule   = "rule"
	OptType   = "type"
	OptRaw    = "raw"
	OptAllow  = "allow"
	OptInline = "inline"
)

// Context describes where a rule is being wired. Rule constructors use it
// to resolve nested rules and the classes they refer to.
type Context struct {
	Class  metadata.ClassID
	Subset string
	// Field is empty for whole-object rules.
	Field string
	// Type is the Go type of the field, nil when unknown.
	Type reflect.Type

	b *Builder
}

// Target is a class and subset a rule maps or validates.
type Target struct {
	Class  metadata.ClassID
	Subset string
	// Type is nil when no Go type is registered for the class.
	Type reflect.Type
}

// Registry returns the registry the rule is resolved from.
func (c *Context) Registry() *Registry {
	return c.b.registry
}

// Validator resolves a nested validator in the same context.
func (c *Context) Validator(ref metadata.RuleRef) (validate.Validator, error) {
	return c.b.validator(*c, ref)
}

// Strategy resolves a nested strategy in the same context.
func (c *Context) Strategy(ref metadata.RuleRef) (strategy.Strategy, error) {
	return c.b.strategy(*c, ref)
}

// Links resolves validator references into chain links, highest priority first.
func (c *Context) Links(refs []metadata.ValidatorRef) ([]validate.Link, error) {
	return c.b.links(*c, refs, false)
}

// Target returns the class a rule applies to. It comes from the "class"
// option, else from the field type, else it is the class being wired when
// the rule is a whole-object rule. The subset comes from the "subset" option
// and defaults to the current subset for the class being wired and to the
// default subset for any other class.
func (c *Context) Target(opts metadata.Options) (Target, error) {
	name, ok, err := stringOption(opts, OptClass)
	if err != nil {
		return Target{}, err
	}

	var t Target

	switch {
	case ok:
		t.Class = metadata.ParseClassID(name)
		t.Type, _ = c.b.registry.Type(t.Class)
	case structOf(c.Type) != nil:
		t.Type = structOf(c.Type)
		t.Class = metadata.ClassOf(t.Type)
	case c.Field == "" && !c.Class.IsZero():
		t.Class = c.Class
		t.Type, _ = c.b.registry.Type(t.Class)
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrMissingOption, OptClass)
	}

	subset, ok, err := stringOption(opts, OptSubset)
	if err != nil {
		return Target{}, err
	}

	switch {
	case ok:
		t.Subset = subset
	case t.Class == c.Class:
		t.Subset = c.Subset
	default:
		t.Subset = metadata.DefaultSubset
	}

	return t, nil
}

// RecordValidator returns the validator of a target's records: its field
// validators followed by its whole-object validator.
func (c *Context) RecordValidator(t Target) (validate.Validator, error) {
	return c.b.record(t.Class, t.Subset)
}

// FieldData returns the field mapping strategy of a target.
func (c *Context) FieldData(t Target) (strategy.Strategy, error) {
	return c.b.fieldData(t)
}

// ListElem returns the element type of the field when it is a slice or array.
func (c *Context) ListElem() reflect.Type {
	if c.Type == nil {
		return nil
	}

	if k := c.Type.Kind(); k == reflect.Slice || k == reflect.Array {
		return c.Type.Elem()
	}

	return nil
}

// structOf returns the named struct type behind pointers, slices and arrays.
func structOf(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			if t.Name() == "" {
				return nil
			}

			return t
		default:
			return nil
		}
	}

	return nil
}

func stringOption(opts metadata.Options, key string) (string, bool, error) {
	v, ok := opts[key]
	if !ok {
		return "", false, nil
	}

	s, isString := v.(string)
	if !isString || s == "" {
		return "", true, fmt.Errorf("%w: %q must be a non-empty string, got %v", ErrInvalidOption, key, v)
	}

	return s, true, nil
}

func requiredString(opts metadata.Options, key string) (string, error) {
	s, ok, err := stringOption(opts, key)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingOption, key)
	}

	return s, nil
}

func ruleOption(opts metadata.Options, key string) (metadata.RuleRef, bool, error) {
	v, ok := opts[key]
	if !ok {
		return metadata.RuleRef{}, false, nil
	}

	ref, err := metadata.ParseRule(v)
	if err != nil {
		return metadata.RuleRef{}, true, fmt.Errorf("%w: %q: %w", ErrInvalidOption, key, err)
	}

	return ref, true, nil
}

func kindOption(opts metadata.Options, key string, required bool) (scalar.Kind, error) {
	name, ok, err := stringOption(opts, key)
	if err != nil {
		return 0, err
	}

	if !ok {
		if required {
			return 0, fmt.Errorf("%w: %q", ErrMissingOption, key)
		}

		return 0, nil
	}

	kind, known := scalar.ParseKind(name)
	if !known {
		return 0, fmt.Errorf("%w: %q: unknown scalar type %q", ErrInvalidOption, key, name)
	}

	return kind, nil
}

// categoryOption reads the conversion categories a scalar rule allows,
// either one name or a list of names.
func categoryOption(opts metadata.Options) (scalar.Category, error) {
	var names []string

	switch v := opts[OptAllow].(type) {
	case nil:
		return scalar.CategoryDefault, nil
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return 0, fmt.Errorf("%w: %q must list category names, got %v", ErrInvalidOption, OptAllow, item)
			}

			names = append(names, s)
		}
	default:
		return 0, fmt.Errorf("%w: %q must list category names, got %v", ErrInvalidOption, OptAllow, v)
	}

	allowed, err := scalar.ParseCategories(names)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidOption, OptAllow, err)
	}

	return allowed, nil
}

func boolOption(opts metadata.Options, key string) (bool, error) {
	switch v := opts[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("%w: %q must be a boolean, got %v", ErrInvalidOption, key, v)
	}
}
