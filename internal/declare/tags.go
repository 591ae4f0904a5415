package declare

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"record-mapper/internal/metadata"
)

// Tag keys. A ".<subset>" suffix scopes the declaration to a subset.
const (
	TagData     = "data"
	TagStrategy = "strategy"
	TagValidate = "validate"
)

const (
	optGetter   = "getter"
	optSetter   = "setter"
	optNullable = "nullable"
	optPriority = "priority"
	optBlocker  = "blocker"
)

// TagDecls are the declarations parsed from one struct tag.
type TagDecls struct {
	Data       []DataDecl
	Strategies []StrategyDecl
	Validators []ValidatorDecl
}

// ParseTag parses the data, strategy and validate declarations of a struct tag.
// Keys it does not own (json, yaml, ...) are ignored.
func ParseTag(tag reflect.StructTag) (TagDecls, error) {
	var out TagDecls

	entries, err := splitTag(string(tag))
	if err != nil {
		return out, err
	}

	for _, e := range entries {
		base, subset, _ := strings.Cut(e.key, ".")
		if base != TagData && strings.TrimSpace(e.value) == "" {
			continue
		}

		switch base {
		case TagData:
			decl, skip, err := parseData(subset, e.value)
			if err != nil {
				return out, fmt.Errorf("%s: %w", e.key, err)
			}

			if !skip {
				out.Data = append(out.Data, decl)
			}

		case TagStrategy:
			name, opts, err := parseRule(e.value)
			if err != nil {
				return out, fmt.Errorf("%s: %w", e.key, err)
			}

			out.Strategies = append(out.Strategies, StrategyDecl{Subset: subset, Name: name, Options: opts})

		case TagValidate:
			decls, err := parseValidators(subset, e.value)
			if err != nil {
				return out, fmt.Errorf("%s: %w", e.key, err)
			}

			out.Validators = append(out.Validators, decls...)
		}
	}

	return out, nil
}

type tagEntry struct {
	key   string
	value string
}

// splitTag walks a struct tag the way reflect.StructTag.Lookup does, keeping every
// key/value pair in order.
func splitTag(tag string) ([]tagEntry, error) {
	var out []tagEntry

	for {
		tag = strings.TrimLeft(tag, " ")
		if tag == "" {
			return out, nil
		}

		i := 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}

		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			return nil, fmt.Errorf("%w: %q", ErrMalformedTag, tag)
		}

		key := tag[:i]
		tag = tag[i+1:]

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}

		if i >= len(tag) {
			return nil, fmt.Errorf("%w: unterminated value for %q", ErrMalformedTag, key)
		}

		value, err := strconv.Unquote(tag[:i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrMalformedTag, key, err)
		}

		out = append(out, tagEntry{key: key, value: value})
		tag = tag[i+1:]
	}
}

func parseData(subset, value string) (DataDecl, bool, error) {
	parts := splitList(value, ',')
	if len(parts) == 1 && strings.TrimSpace(parts[0]) == "-" {
		return DataDecl{}, true, nil
	}

	decl := DataDecl{Subset: subset, Field: strings.TrimSpace(parts[0])}

	for _, part := range parts[1:] {
		key, val, hasValue := strings.Cut(strings.TrimSpace(part), "=")

		switch key {
		case optGetter, optSetter:
			if !hasValue {
				return decl, false, fmt.Errorf("%w: %s needs a value", ErrMalformedTag, key)
			}

			name := strings.TrimSpace(val)
			if key == optGetter {
				decl.Getter = &name
			} else {
				decl.Setter = &name
			}

		case optNullable:
			decl.Nullable = true

			if hasValue {
				b, err := strconv.ParseBool(val)
				if err != nil {
					return decl, false, fmt.Errorf("%w: nullable=%s", ErrMalformedTag, val)
				}

				decl.Nullable = b
			}

		default:
			return decl, false, fmt.Errorf("%w: unknown data option %q", ErrMalformedTag, key)
		}
	}

	return decl, false, nil
}

func parseRule(value string) (string, metadata.Options, error) {
	parts := splitList(value, ',')

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", nil, fmt.Errorf("%w: missing rule name in %q", ErrMalformedTag, value)
	}

	var opts metadata.Options

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if opts == nil {
			opts = metadata.Options{}
		}

		key, val, hasValue := strings.Cut(part, "=")
		if !hasValue {
			opts[key] = true
			continue
		}

		opts[strings.TrimSpace(key)] = parseValue(val)
	}

	return name, opts, nil
}

func parseValidators(subset, value string) ([]ValidatorDecl, error) {
	var out []ValidatorDecl

	for _, item := range splitList(value, '|') {
		name, opts, err := parseRule(item)
		if err != nil {
			return nil, err
		}

		decl := ValidatorDecl{Subset: subset, Name: name, Priority: metadata.DefaultPriority}

		if p, ok := opts[optPriority]; ok {
			n, ok := p.(int64)
			if !ok {
				return nil, fmt.Errorf("%w: priority of %s must be an integer", ErrMalformedTag, name)
			}

			decl.Priority = int(n)
			delete(opts, optPriority)
		}

		if b, ok := opts[optBlocker]; ok {
			blocker, ok := b.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: blocker of %s must be a boolean", ErrMalformedTag, name)
			}

			decl.Blocker = blocker
			delete(opts, optBlocker)
		}

		if len(opts) > 0 {
			decl.Options = opts
		}

		out = append(out, decl)
	}

	return out, nil
}

// parseValue types an option value.
func parseValue(s string) any {
	s = strings.TrimSpace(s)

	switch {
	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1]
	case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		inner := strings.TrimSpace(s[1 : len(s)-1])
		items := []any{}

		if inner == "" {
			return items
		}

		for _, item := range splitList(inner, ';') {
			items = append(items, parseValue(item))
		}

		return items
	case s == "true":
		return true
	case s == "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}

// splitList splits s on sep, ignoring separators inside single quotes or brackets.
func splitList(s string, sep byte) []string {
	var (
		out    []string
		depth  int
		quoted bool
		start  int
	)

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}

	return append(out, s[start:])
}
