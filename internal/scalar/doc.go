// Package scalar classifies Go scalar values by Kind and converts between kinds.
//
// Conversions are grouped into categories (safe numbers, textual numbers,
// datetime strings, ...). Convert only performs conversions whose category is
// allowed by the caller, and never silently truncates: a narrowing number
// conversion that would overflow or drop a fraction fails.
package scalar
