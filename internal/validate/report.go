package validate

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"record-mapper/internal/common"
)

// Report is a tree of violations keyed by violation code, field name or item index.
// An empty report means valid.
type Report map[string]Entry

// Entry holds the messages reported under a key and the nested report, if any.
type Entry struct {
	Messages []string
	Inner    Report
}

// Violation returns a report with a single message under key.
func Violation(key, message string) Report {
	return Report{key: {Messages: []string{message}}}
}

// Nested returns a report holding inner under key, or nil when inner is empty.
func Nested(key string, inner Report) Report {
	if len(inner) == 0 {
		return nil
	}

	return Report{key: {Inner: inner}}
}

// Valid reports whether r has no violations.
func (r Report) Valid() bool {
	return len(r) == 0
}

// Has reports whether a key is present.
func (r Report) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Messages returns the messages reported under key.
func (r Report) Messages(key string) []string {
	return r[key].Messages
}

// Inner returns the nested report under key.
func (r Report) Inner(key string) Report {
	return r[key].Inner
}

// Merge returns a new report holding the violations of r and other.
// Messages under a shared key are unioned in order; nested reports merge recursively.
func (r Report) Merge(other Report) Report {
	if len(other) == 0 {
		return r
	}

	if len(r) == 0 {
		return other
	}

	out := make(Report, len(r)+len(other))
	for k, e := range r {
		out[k] = e
	}

	for k, e := range other {
		cur, ok := out[k]
		if !ok {
			out[k] = e
			continue
		}

		out[k] = Entry{
			Messages: common.AppendUnique(slices.Clone(cur.Messages), e.Messages...),
			Inner:    cur.Inner.Merge(e.Inner),
		}
	}

	return out
}

// Flatten returns every message keyed by its dotted path, e.g.
// "fieldDataInvalidInner.email.notNull".
func (r Report) Flatten() map[string][]string {
	out := make(map[string][]string)
	r.flatten("", out)

	return out
}

func (r Report) flatten(prefix string, out map[string][]string) {
	for k, e := range r {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		if len(e.Messages) > 0 {
			out[path] = append(out[path], e.Messages...)
		}

		e.Inner.flatten(path, out)
	}
}

// String renders the report as sorted "path: message" lines.
func (r Report) String() string {
	flat := r.Flatten()

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	var b strings.Builder

	for _, p := range paths {
		for _, m := range flat[p] {
			b.WriteString(p)
			b.WriteString(": ")
			b.WriteString(m)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// MarshalJSON renders a single message as a string, several as a list and
// a nested report as an object. An entry with both becomes
// {"messages": [...], "inner": {...}}.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.plain())
}

func (r Report) plain() map[string]any {
	out := make(map[string]any, len(r))

	for k, e := range r {
		switch {
		case len(e.Inner) > 0 && len(e.Messages) > 0:
			out[k] = map[string]any{"messages": e.Messages, "inner": e.Inner.plain()}
		case len(e.Inner) > 0:
			out[k] = e.Inner.plain()
		case len(e.Messages) == 1:
			out[k] = e.Messages[0]
		default:
			out[k] = e.Messages
		}
	}

	return out
}

func indexKey(i int) string {
	return strconv.Itoa(i)
}
