// Package metadata defines the per-class, per-subset field metadata that
// drives hydration, extraction and validation.
//
// Key types:
//   - ClassID: package import path + type name, the identity of a class
//   - ClassMetadata: ordered fields, accessor bindings, strategy and validator
//     references and nullability for one (class, subset) pair
//   - RuleRef / ValidatorRef: declarative references resolved later by a factory
//   - Value: the scalar/list/map-only blob used to persist metadata
//
// ClassMetadata is built once by the metadata source and never modified
// afterwards; it is shared freely between goroutines.
package metadata
