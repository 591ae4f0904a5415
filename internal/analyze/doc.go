// Package analyze reads class declarations statically from Go source.
//
// It uses golang.org/x/tools/go/packages with go/types to find named struct
// types, parse their declaration tags and collect the full method set of
// their pointer type. Unlike declare.TypeReader it sees unexported methods,
// so an accessor bound to one is reported as not public rather than missing.
//
// The Analyzer implements declare.Reader.
package analyze
