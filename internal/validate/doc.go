// Package validate composes validators into trees and aggregates their
// violations into a Report.
//
// A Validator never returns an error for bad data: violations are data, and
// an empty Report means the value is valid. Composite validators hold their
// already-built children and no mutable state, so a tree is safe for
// concurrent use once constructed.
//
// Composites:
//   - Chain runs links in order and stops after a blocking link reports
//   - Collection validates every item of a slice or array
//   - FieldData validates named fields of a record (see package record)
//   - TypeCompliant, Identifier, SerializableValue adapt nested rules
//
// Leaf rules such as NotNull, Scalar and Playground report under a fixed key.
package validate
