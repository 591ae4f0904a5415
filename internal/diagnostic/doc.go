// Package diagnostic provides structured, non-fatal findings collected while
// metadata is assembled from declarations.
//
// Fatal declaration problems are returned as errors; diagnostics cover the
// cases that are tolerated but worth reporting, such as a class-level
// validator declared for a subset that has no fields.
package diagnostic
