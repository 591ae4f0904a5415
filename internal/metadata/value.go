package metadata

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the variant tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// Value is a tagged variant holding a scalar, a list of values or a string-keyed map of values.
// It is the only shape persisted by the metadata cache; live objects cannot be represented.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list value.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindList, list: items}
}

// Map returns a map value.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}

	return Value{kind: KindMap, m: m}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean and whether v holds one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer and whether v holds one.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float and whether v holds one.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string and whether v holds one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns the items and whether v holds a list.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the entries and whether v holds a map.
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// Get returns a map entry. It returns Null for missing keys and non-map values.
func (v Value) Get(key string) Value {
	return v.m[key]
}

// Equal reports whether two values are deeply equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}

		for k, item := range v.m {
			other, ok := o.m[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// Any converts v to plain Go values: nil, bool, int64, float64, string, []any and map[string]any.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}

		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Any()
		}

		return out
	default:
		return nil
	}
}

// FromAny converts plain Go data into a Value. Slices, arrays and maps with string keys
// are converted recursively; anything else that is not a scalar is rejected with ErrLiveValue.
func FromAny(in any) (Value, error) {
	switch x := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	}

	return fromReflect(reflect.ValueOf(in))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrLiveValue, u)
		}

		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}

		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}

		items := make([]Value, rv.Len())
		for i := range items {
			item, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}

			items[i] = item
		}

		return List(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key type %s", ErrLiveValue, rv.Type().Key())
		}

		if rv.IsNil() {
			return Null(), nil
		}

		m := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			item, err := FromAny(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", iter.Key().String(), err)
			}

			m[iter.Key().String()] = item
		}

		return Map(m), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrLiveValue, rv.Type())
	}
}

// MarshalYAML implements yaml.Marshaler. Scalars carry explicit tags so that
// a float with an integral value still decodes as a float.
func (v Value) MarshalYAML() (any, error) {
	return v.node(), nil
}

func (v Value) node() *yaml.Node {
	switch v.kind {
	case KindBool:
		return scalarNode("!!bool", strconv.FormatBool(v.b))
	case KindInt:
		return scalarNode("!!int", strconv.FormatInt(v.i, 10))
	case KindFloat:
		return scalarNode("!!float", formatFloat(v.f))
	case KindString:
		return stringNode(v.s)
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.list {
			n.Content = append(n.Content, item.node())
		}

		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		for _, k := range keys {
			n.Content = append(n.Content, stringNode(k), v.m[k].node())
		}

		return n
	default:
		return scalarNode("!!null", "null")
	}
}

// stringNode tags strings that are not valid UTF-8 as base64 !!binary,
// which YAML cannot hold as text.
func stringNode(s string) *yaml.Node {
	if !utf8.ValidString(s) {
		return scalarNode("!!binary", base64.StdEncoding.EncodeToString([]byte(s)))
	}

	return scalarNode("!!str", s)
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			*v = Null()
			return nil
		}

		return v.UnmarshalYAML(node.Content[0])

	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)

	case yaml.ScalarNode:
		return v.unmarshalScalar(node)

	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			if err := items[i].UnmarshalYAML(child); err != nil {
				return err
			}
		}

		*v = List(items...)

		return nil

	case yaml.MappingNode:
		if len(node.Content)%2 != 0 {
			return fmt.Errorf("%w: odd mapping node at line %d", ErrMalformedBlob, node.Line)
		}

		m := make(map[string]Value, len(node.Content)/2)

		for i := 0; i < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: non-scalar key at line %d", ErrMalformedBlob, key.Line)
			}

			k, err := scalarString(key)
			if err != nil {
				return err
			}

			var item Value
			if err := item.UnmarshalYAML(node.Content[i+1]); err != nil {
				return err
			}

			m[k] = item
		}

		*v = Map(m)

		return nil

	default:
		return fmt.Errorf("%w: unexpected node kind %v", ErrMalformedBlob, node.Kind)
	}
}

func (v *Value) unmarshalScalar(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		*v = Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}

		*v = Bool(b)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return err
		}

		*v = Int(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}

		*v = Float(f)
	default:
		str, err := scalarString(node)
		if err != nil {
			return err
		}

		*v = String(str)
	}

	return nil
}

func scalarString(node *yaml.Node) (string, error) {
	if node.ShortTag() != "!!binary" {
		return node.Value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(node.Value), ""))
	if err != nil {
		return "", fmt.Errorf("%w: bad !!binary at line %d: %w", ErrMalformedBlob, node.Line, err)
	}

	return string(data), nil
}
