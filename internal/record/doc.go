// Package record provides KeyValueView, the read capability the rule engine
// needs from record-like data, and Ordered, an insertion-ordered record.
//
// Raw data is resolved to a View once, where it enters the engine:
//
//	view, ok := record.ViewOf(data)
//	if !ok {
//		// not record-like
//	}
//	v, present := view.Get("name")
//
// Supported inputs are map[string]any, *Ordered, and any other map whose
// key kind is string.
package record
