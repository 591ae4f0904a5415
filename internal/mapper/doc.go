// Package mapper hydrates Go objects from records and extracts records from
// Go objects, using rule trees wired from class metadata.
//
// Hydration always validates first: when the record has violations the
// report is returned and the object is left untouched.
package mapper
