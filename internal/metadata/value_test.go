package metadata

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueYAMLRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"null", Null()},
		{"bool", Bool(true)},
		{"int", Int(-42)},
		{"big int", Int(math.MaxInt64)},
		{"integral float", Float(1)},
		{"float", Float(3.25)},
		{"inf", Float(math.Inf(-1))},
		{"string", String("hello")},
		{"numeric string", String("123")},
		{"bool string", String("true")},
		{"null string", String("null")},
		{"empty string", String("")},
		{"invalid utf-8", String("\xff\xfe")},
		{"base64 text", String("//4=")},
		{"invalid utf-8 key", Map(map[string]Value{"\xffk": String("v\xfe"), "k": String("v")})},
		{"empty list", List()},
		{"empty map", Map(nil)},
		{"nested", Map(map[string]Value{
			"fields": List(
				Map(map[string]Value{"name": String("id"), "nullable": Bool(false)}),
				Map(map[string]Value{"name": String("tags"), "max": Int(3), "ratio": Float(0.5)}),
			),
			"":    String("default subset key"),
			"nil": Null(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := yaml.Marshal(tt.value)
			require.NoError(t, err)

			var got Value
			require.NoError(t, yaml.Unmarshal(data, &got), string(data))

			if diff := cmp.Diff(tt.value, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s\nyaml:\n%s", diff, data)
			}
		})
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"a": []string{"x", "y"},
		"b": uint8(7),
		"c": float32(1.5),
		"d": map[string]int{"n": 1},
		"e": nil,
	})
	require.NoError(t, err)

	want := Map(map[string]Value{
		"a": List(String("x"), String("y")),
		"b": Int(7),
		"c": Float(1.5),
		"d": Map(map[string]Value{"n": Int(1)}),
		"e": Null(),
	})
	assert.True(t, want.Equal(v), cmp.Diff(want, v))

	assert.Equal(t, map[string]any{
		"a": []any{"x", "y"},
		"b": int64(7),
		"c": 1.5,
		"d": map[string]any{"n": int64(1)},
		"e": nil,
	}, v.Any())
}

func TestFromAnyRejectsLiveValues(t *testing.T) {
	type live struct{ X int }

	tests := []struct {
		name string
		in   any
	}{
		{"func", func() {}},
		{"struct", live{X: 1}},
		{"pointer", &live{}},
		{"channel", make(chan int)},
		{"nested func", map[string]any{"ok": 1, "bad": []any{func() {}}}},
		{"int keys", map[int]string{1: "a"}},
		{"uint overflow", uint64(math.MaxUint64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAny(tt.in)
			assert.ErrorIs(t, err, ErrLiveValue)
		})
	}
}

func TestValueUnmarshalMalformed(t *testing.T) {
	var v Value

	err := yaml.Unmarshal([]byte("{[a]: 1}"), &v)
	assert.Error(t, err)

	err = yaml.Unmarshal([]byte("!!binary '%%%'"), &v)
	assert.ErrorIs(t, err, ErrMalformedBlob)
}

func TestValueYAMLBinaryTag(t *testing.T) {
	data, err := yaml.Marshal(String("\xff\xfe"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "!!binary")
	assert.Contains(t, string(data), "//4=")
}

func TestNormalizeOptions(t *testing.T) {
	opts, err := NormalizeOptions(Options{"max": 3, "list": []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, Options{"max": int64(3), "list": []any{"a"}}, opts)

	opts, err = NormalizeOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts)

	_, err = NormalizeOptions(Options{"fn": func() {}})
	assert.ErrorIs(t, err, ErrLiveValue)
}
