// Package strategy composes symmetric value transforms used to hydrate Go
// objects from records and to extract records from Go objects.
//
// Every Strategy has two directions:
//
//	Extract(from) -> raw value (scalars, lists, records)
//	Hydrate(from, to) -> Go value, reusing to when it is not nil
//
// Composite strategies (FieldData, NoArgObject, IdentifiableValue, List)
// hold their already-built children and are safe for concurrent use.
// Data that does not fit a strategy yields an error wrapping ErrInvalidData;
// errors from nested strategies carry the field and index path in a *PathError.
package strategy
