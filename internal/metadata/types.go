package metadata

import (
	"reflect"

	"record-mapper/internal/common"
)

// DefaultSubset is the subset used when a declaration does not name one.
const DefaultSubset = ""

// ClassKey is the reserved Validators key holding whole-object validators.
const ClassKey = "*"

// DefaultPriority is the priority of a validator reference that does not declare one.
const DefaultPriority = 1

// ClassID uniquely identifies a class by its package path and name.
type ClassID struct {
	PkgPath string // e.g., "example.com/app/model"
	Name    string // e.g., "User"
}

// String returns the qualified name, e.g. "example.com/app/model.User".
func (c ClassID) String() string {
	if c.PkgPath == "" {
		return c.Name
	}

	return c.PkgPath + "." + c.Name
}

// Short returns the class name qualified by its package alias, e.g. "model.User".
func (c ClassID) Short() string {
	if alias := common.PkgAlias(c.PkgPath); alias != "" {
		return alias + "." + c.Name
	}

	return c.Name
}

// IsZero reports whether the ClassID is unset.
func (c ClassID) IsZero() bool {
	return c.Name == ""
}

// ParseClassID parses a qualified name produced by ClassID.String.
func ParseClassID(qualified string) ClassID {
	pkgPath, name := common.SplitQualified(qualified)

	return ClassID{PkgPath: pkgPath, Name: name}
}

// ClassOf returns the ClassID of a named Go type. Pointers are dereferenced.
func ClassOf(t reflect.Type) ClassID {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return ClassID{PkgPath: t.PkgPath(), Name: t.Name()}
}

// AccessKind describes how a field is read or written.
type AccessKind uint8

const (
	AccessAbsent AccessKind = iota // no accessor, the direction is skipped
	AccessDirect                   // struct field access
	AccessMethod                   // named method call
)

// String returns a human-readable access kind.
func (k AccessKind) String() string {
	switch k {
	case AccessAbsent:
		return "absent"
	case AccessDirect:
		return "direct"
	case AccessMethod:
		return "method"
	default:
		return common.UnknownStr
	}
}

func parseAccessKind(s string) (AccessKind, bool) {
	switch s {
	case "absent":
		return AccessAbsent, true
	case "direct":
		return AccessDirect, true
	case "method":
		return AccessMethod, true
	default:
		return AccessAbsent, false
	}
}

// Accessor is a resolved binding for one direction of a field.
// Name is the struct field name for AccessDirect and the method name for AccessMethod.
type Accessor struct {
	Kind AccessKind
	Name string
}

// Direct returns a struct field accessor.
func Direct(field string) Accessor {
	return Accessor{Kind: AccessDirect, Name: field}
}

// Method returns a method accessor.
func Method(name string) Accessor {
	return Accessor{Kind: AccessMethod, Name: name}
}

// IsAbsent reports whether there is no accessor.
func (a Accessor) IsAbsent() bool {
	return a.Kind == AccessAbsent
}

// Accessors holds the getter and setter of a field.
type Accessors struct {
	Getter Accessor
	Setter Accessor
}

// Options are rule options. Values are restricted to what Value can hold.
type Options map[string]any

// String returns a string option, or def when absent or not a string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}

	return def
}

// Bool returns a bool option, or def when absent or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}

	return def
}

// Clone returns a shallow copy of the options.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}

	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}

	return out
}

// RuleRef references a strategy or validator by name and options.
type RuleRef struct {
	Name    string
	Options Options
}

// ValidatorRef references a validator along with its ordering and blocking flags.
type ValidatorRef struct {
	RuleRef

	// Priority orders validators; higher runs first. Defaults to DefaultPriority.
	Priority int
	// Blocker stops the enclosing chain when this validator reports violations.
	Blocker bool
}

// ClassMetadata is the metadata of one class for one subset.
type ClassMetadata struct {
	Class  ClassID
	Subset string

	// Fields lists field names in declaration order.
	Fields []string
	// Accessors maps a field to its getter and setter bindings.
	Accessors map[string]Accessors
	// Strategies maps a field to its strategy reference; nil means no strategy.
	Strategies map[string]*RuleRef
	// Validators maps a field to its validators in declaration order.
	// The ClassKey entry holds whole-object validators.
	Validators map[string][]ValidatorRef
	// Nullable maps a field to whether nil is an acceptable value.
	Nullable map[string]bool
	// ClassStrategy is the whole-object strategy, nil when none was declared.
	ClassStrategy *RuleRef
}

// NewClassMetadata returns empty metadata for a class and subset.
func NewClassMetadata(class ClassID, subset string) *ClassMetadata {
	return &ClassMetadata{
		Class:      class,
		Subset:     subset,
		Accessors:  make(map[string]Accessors),
		Strategies: make(map[string]*RuleRef),
		Validators: make(map[string][]ValidatorRef),
		Nullable:   make(map[string]bool),
	}
}

// HasField reports whether a field with that name exists.
func (m *ClassMetadata) HasField(name string) bool {
	_, ok := m.Accessors[name]
	return ok
}

// ClassValidators returns the whole-object validator references.
func (m *ClassMetadata) ClassValidators() []ValidatorRef {
	return m.Validators[ClassKey]
}

// Int returns an integer option, or def when absent or not a number.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// NormalizeOptions converts options to the canonical representation a cache
// round trip produces (int64, float64, []any, map[string]any). It fails when
// an option cannot be stored in a blob.
func NormalizeOptions(o Options) (Options, error) {
	if len(o) == 0 {
		return nil, nil
	}

	v, err := FromAny(map[string]any(o))
	if err != nil {
		return nil, err
	}

	return Options(v.Any().(map[string]any)), nil
}
