// Package source assembles subset-partitioned class metadata from raw declarations.
//
// Build pipeline:
//  1. Collect the data, strategy and validator declarations of every property
//  2. Create one ClassMetadata per subset that has at least one data declaration
//  3. Resolve field names, rejecting duplicates within a subset
//  4. Resolve accessors: direct access for exported fields, otherwise Get<Name>/Set<Name>,
//     checking that named methods exist, are exported and have the right arity
//  5. Attach the subset's strategy and validators to the field
//  6. Attach class-level declarations to subsets that already exist; the rest are
//     dropped and reported as warnings
package source
