// Package factory turns metadata rule references into live rule trees.
//
// A Registry maps rule names to constructors, one namespace for validators
// and one for strategies, and holds the per-class collaborators rules need:
// Go types, identifier functions and loaders. A Builder combines a Registry
// with a metadata provider and wires whole classes:
//
//	b := factory.New(factory.NewRegistry(), provider)
//	v, err := b.Validator(class, "create")  // record validator
//	s, err := b.Strategy(class, "create")   // object strategy
//
// Field validators run in descending priority, ties in declaration order,
// and fields that are not nullable get a blocking not_null first. Nodes are
// memoized per class and subset, so self-referencing types wire into cyclic
// trees instead of recursing forever.
//
// Unknown rule names and missing or malformed options are configuration
// errors reported at wiring time, wrapping ErrUnknownRule, ErrMissingOption
// or ErrInvalidOption.
package factory
