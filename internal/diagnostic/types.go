package diagnostic

import (
	"fmt"
	"strings"
)

// Diagnostic codes.
const (
	CodeClassValidatorDropped = "class_validator_dropped"
	CodeClassStrategyDropped  = "class_strategy_dropped"
	CodeStrategyOverridden    = "strategy_overridden"
)

// Diagnostics holds the warnings collected during a metadata build.
type Diagnostics struct {
	Warnings []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Class identifies the class this relates to (if any).
	Class string
	// Subset identifies the metadata subset this relates to (if any).
	Subset string
	// Field identifies the field this relates to (if any).
	Field string
}

// Location identifies where a diagnostic applies.
type Location struct {
	Class  string
	Subset string
	Field  string
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, loc Location) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Code:    code,
		Message: message,
		Class:   loc.Class,
		Subset:  loc.Subset,
		Field:   loc.Field,
	})
}

// All returns every diagnostic in the order it was added.
func (d *Diagnostics) All() []Diagnostic {
	return d.Warnings
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Class != "" {
		prefix = append(prefix, "["+d.Class+"]")
	}

	if d.Subset != "" {
		prefix = append(prefix, "subset="+d.Subset)
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
