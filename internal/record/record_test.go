package record

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type labels map[string]string

type attr string

func TestViewOf(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		ok     bool
		key    string
		want   any
		exists bool
	}{
		{"map", map[string]any{"a": 1}, true, "a", 1, true},
		{"map missing key", map[string]any{"a": 1}, true, "b", nil, false},
		{"nil map", map[string]any(nil), true, "a", nil, false},
		{"typed map", labels{"env": "prod"}, true, "env", "prod", true},
		{"string-kinded key", map[attr]int{"x": 2}, true, "x", 2, true},
		{"present nil value", map[string]any{"a": nil}, true, "a", nil, true},
		{"int keys", map[int]string{1: "a"}, false, "", nil, false},
		{"string", "not a record", false, "", nil, false},
		{"slice", []any{1}, false, "", nil, false},
		{"nil", nil, false, "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, ok := ViewOf(tt.in)
			require.Equal(t, tt.ok, ok)

			if !ok {
				return
			}

			got, exists := view.Get(tt.key)
			assert.Equal(t, tt.exists, exists)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViewKeys(t *testing.T) {
	view, ok := ViewOf(labels{"b": "2", "a": "1"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, view.Keys())

	view, ok = ViewOf(map[string]any{"z": 1, "y": 2})
	require.True(t, ok)
	assert.Equal(t, []string{"y", "z"}, view.Keys())
}

func TestOrdered(t *testing.T) {
	var o Ordered

	o.Set("name", "ada")
	o.Set("id", 7)
	o.Set("name", "grace")

	assert.Equal(t, 2, o.Len())
	assert.Equal(t, []string{"name", "id"}, o.Keys())

	v, ok := o.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "grace", v)

	view, ok := ViewOf(&o)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "id"}, view.Keys())

	var pairs []string
	for k := range o.All() {
		pairs = append(pairs, k)
		break
	}

	assert.Equal(t, []string{"name"}, pairs)
}

func TestOrderedMarshal(t *testing.T) {
	inner := NewOrdered()
	inner.Set("z", true)
	inner.Set("a", nil)

	o := NewOrdered()
	o.Set("second", 2)
	o.Set("first", "one")
	o.Set("nested", inner)
	o.Set("list", []any{1, "x"})

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"second":2,"first":"one","nested":{"z":true,"a":null},"list":[1,"x"]}`, string(data))

	out, err := yaml.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, "second: 2\nfirst: one\nnested:\n    z: true\n    a: null\nlist:\n    - 1\n    - x\n", string(out))

	data, err = json.Marshal(NewOrdered())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
