package record

import (
	"bytes"
	"iter"
	"reflect"
	"slices"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// View reads keyed values from a record.
type View interface {
	// Get returns the value stored under key and whether the key is present.
	Get(key string) (any, bool)
	// Keys returns the present keys. Order is only meaningful for ordered records.
	Keys() []string
}

// Writer stores keyed values into a record.
type Writer interface {
	Set(key string, value any)
}

// ViewOf resolves v to a View. It reports false when v is not record-like.
// A nil map yields an empty view.
func ViewOf(v any) (View, bool) {
	switch x := v.(type) {
	case View:
		return x, true
	case map[string]any:
		return Map(x), true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return reflectMap{rv: rv}, true
	}

	return nil, false
}

// Map is the View of a map[string]any.
type Map map[string]any

// Get implements View.
func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys implements View. Keys are sorted.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Set implements Writer.
func (m Map) Set(key string, value any) {
	m[key] = value
}

type reflectMap struct {
	rv reflect.Value
}

func (r reflectMap) Get(key string) (any, bool) {
	v := r.rv.MapIndex(reflect.ValueOf(key).Convert(r.rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}

	return v.Interface(), true
}

func (r reflectMap) Keys() []string {
	keys := make([]string, 0, r.rv.Len())
	for _, k := range r.rv.MapKeys() {
		keys = append(keys, k.String())
	}

	slices.Sort(keys)

	return keys
}

// Ordered is a record that keeps keys in insertion order.
// The zero value is an empty record ready to use.
type Ordered struct {
	keys   []string
	values map[string]any
}

// NewOrdered returns an empty record.
func NewOrdered() *Ordered {
	return &Ordered{}
}

// Get implements View.
func (o *Ordered) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys implements View. Keys are in insertion order.
func (o *Ordered) Keys() []string {
	return slices.Clone(o.keys)
}

// Set implements Writer. Replacing a value keeps the key's position.
func (o *Ordered) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}

	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}

// Len returns the number of keys.
func (o *Ordered) Len() int {
	return len(o.keys)
}

// All iterates key/value pairs in insertion order.
func (o *Ordered) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON renders the record as a JSON object in insertion order.
func (o *Ordered) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML renders the record as a YAML mapping in insertion order.
func (o *Ordered) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, k := range o.keys {
		var value yaml.Node
		if err := value.Encode(o.values[k]); err != nil {
			return nil, err
		}

		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &value)
	}

	return n, nil
}
