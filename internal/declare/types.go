package declare

import (
	"errors"
	"fmt"

	"record-mapper/internal/metadata"
)

// ErrUnknownClass is returned by a Reader that has no declarations for a class.
var ErrUnknownClass = errors.New("unknown class")

// ErrMalformedTag is returned when a declaration tag cannot be parsed.
var ErrMalformedTag = errors.New("malformed declaration tag")

// Reader yields the raw declarations of a class.
type Reader interface {
	Read(class metadata.ClassID) (*Declarations, error)
}

// Readers consults each reader in order and returns the first one that knows
// the class.
type Readers []Reader

// Read implements Reader.
func (rs Readers) Read(class metadata.ClassID) (*Declarations, error) {
	for _, r := range rs {
		decl, err := r.Read(class)
		if errors.Is(err, ErrUnknownClass) {
			continue
		}

		return decl, err
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
}

// Declarations are the raw, unvalidated declarations of one class.
type Declarations struct {
	Class metadata.ClassID
	// Properties in declaration order, including unexported ones.
	Properties []Property
	// ClassValidators are whole-object validator declarations.
	ClassValidators []ValidatorDecl
	// ClassStrategies are whole-object strategy declarations.
	ClassStrategies []StrategyDecl
	// Methods is the method set accessors may bind to, keyed by name.
	Methods map[string]Method
}

// Property is one declared property of a class.
type Property struct {
	Name string
	// Direct is true when the property can be read and written without a method.
	Direct     bool
	Data       []DataDecl
	Strategies []StrategyDecl
	Validators []ValidatorDecl
}

// DataDecl makes a property a mapped field within one subset.
type DataDecl struct {
	Subset string
	// Field overrides the field name; empty means the property name.
	Field string
	// Getter and Setter override accessor names. nil synthesizes a default,
	// a pointer to "" means no accessor.
	Getter   *string
	Setter   *string
	Nullable bool
}

// StrategyDecl attaches a strategy to a property within one subset.
type StrategyDecl struct {
	Subset  string
	Name    string
	Options metadata.Options
}

// ValidatorDecl attaches a validator to a property or class within one subset.
type ValidatorDecl struct {
	Subset   string
	Name     string
	Options  metadata.Options
	Priority int
	Blocker  bool
}

// Ref returns the metadata reference for the declaration.
func (v ValidatorDecl) Ref() metadata.ValidatorRef {
	return metadata.ValidatorRef{
		RuleRef:  metadata.RuleRef{Name: v.Name, Options: v.Options},
		Priority: v.Priority,
		Blocker:  v.Blocker,
	}
}

// Ref returns the metadata reference for the declaration.
func (s StrategyDecl) Ref() *metadata.RuleRef {
	return &metadata.RuleRef{Name: s.Name, Options: s.Options}
}

// Method describes a method accessors may bind to.
type Method struct {
	Name     string
	Exported bool
	// Params is the number of parameters, the variadic one included.
	Params   int
	Variadic bool
}

// Ptr returns a pointer to s, for building DataDecl accessor overrides.
func Ptr(s string) *string {
	return &s
}
