package metadata

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleMetadata() map[string]*ClassMetadata {
	class := ClassID{PkgPath: "example.com/app/model", Name: "User"}

	def := NewClassMetadata(class, DefaultSubset)
	def.Fields = []string{"name", "email", "tags"}
	def.Accessors["name"] = Accessors{Getter: Direct("Name"), Setter: Direct("Name")}
	def.Accessors["email"] = Accessors{Getter: Method("GetEmail"), Setter: Method("SetEmail")}
	def.Accessors["tags"] = Accessors{Getter: Method("GetTags")}
	def.Strategies["name"] = nil
	def.Strategies["email"] = nil
	def.Strategies["tags"] = &RuleRef{Name: "no_arg_object_list", Options: Options{"type": "example.com/app/model.Tag"}}
	def.Nullable["name"] = false
	def.Nullable["email"] = true
	def.Nullable["tags"] = true
	def.Validators["name"] = []ValidatorRef{
		{RuleRef: RuleRef{Name: "playground", Options: Options{"rule": "min=3"}}, Priority: 1, Blocker: true},
		{RuleRef: RuleRef{Name: "whatever"}, Priority: 5},
	}
	def.Validators[ClassKey] = []ValidatorRef{{RuleRef: RuleRef{Name: "unique_email"}, Priority: 1}}

	create := NewClassMetadata(class, "create")
	create.Fields = []string{"password"}
	create.Accessors["password"] = Accessors{Setter: Method("SetPassword")}
	create.Strategies["password"] = nil
	create.Nullable["password"] = false
	create.ClassStrategy = &RuleRef{Name: "field_data", Options: Options{"shape": "record", "depth": int64(2)}}

	return map[string]*ClassMetadata{DefaultSubset: def, "create": create}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleMetadata()

	blob, err := Encode(want)
	require.NoError(t, err)

	data, err := yaml.Marshal(blob)
	require.NoError(t, err)

	var loaded Value
	require.NoError(t, yaml.Unmarshal(data, &loaded))

	got, err := Decode(loaded)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"name", "email", "tags"}, got[DefaultSubset].Fields)
}

func TestEncodeRejectsLiveOptions(t *testing.T) {
	md := sampleMetadata()
	md[DefaultSubset].Strategies["name"] = &RuleRef{Name: "custom", Options: Options{"fn": func() {}}}

	_, err := Encode(md)
	assert.ErrorIs(t, err, ErrLiveValue)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   Value
	}{
		{"not a map", List()},
		{"missing class", Map(map[string]Value{"": Map(nil)})},
		{"subset mismatch", Map(map[string]Value{"a": Map(map[string]Value{
			"class":  String("x.Y"),
			"subset": String("b"),
			"fields": List(),
		})})},
		{"bad accessor", Map(map[string]Value{"": Map(map[string]Value{
			"class":  String("x.Y"),
			"subset": String(""),
			"fields": List(Map(map[string]Value{
				"name":   String("f"),
				"getter": Map(map[string]Value{"kind": String("teleport")}),
			})),
		})})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			assert.True(t, errors.Is(err, ErrMalformedBlob), "got %v", err)
		})
	}
}

func TestClassID(t *testing.T) {
	id := ParseClassID("example.com/app/model.User")
	assert.Equal(t, ClassID{PkgPath: "example.com/app/model", Name: "User"}, id)
	assert.Equal(t, "example.com/app/model.User", id.String())
	assert.Equal(t, "model.User", id.Short())
	assert.False(t, id.IsZero())
}

func TestMetadataErrorMessage(t *testing.T) {
	err := NewError(ClassID{PkgPath: "m", Name: "User"}, "create", "email", ErrDuplicateField)

	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.Equal(t, `metadata of m.User (subset "create") field "email": duplicate field`, err.Error())
}

func TestValidatorList(t *testing.T) {
	refs := []ValidatorRef{
		{RuleRef: RuleRef{Name: "scalar", Options: Options{"type": "int"}}, Priority: 5, Blocker: true},
		{RuleRef: RuleRef{Name: "not_null"}, Priority: DefaultPriority},
	}

	list, err := ValidatorList(refs)
	require.NoError(t, err)
	require.Len(t, list, 2)

	back, err := ParseValidatorList(list)
	require.NoError(t, err)
	assert.Equal(t, refs, back)

	_, err = ParseValidatorList(map[string]any{"name": "x"})
	require.ErrorIs(t, err, ErrMalformedBlob)
}

func TestParseRule(t *testing.T) {
	ref, err := ParseRule("whatever")
	require.NoError(t, err)
	assert.Equal(t, RuleRef{Name: "whatever"}, ref)

	ref, err = ParseRule(map[string]any{"name": "scalar", "options": map[string]any{"type": "int"}})
	require.NoError(t, err)
	assert.Equal(t, RuleRef{Name: "scalar", Options: Options{"type": "int"}}, ref)

	for _, bad := range []any{"", 42, map[string]any{"options": map[string]any{}}} {
		_, err = ParseRule(bad)
		assert.ErrorIs(t, err, ErrMalformedBlob, "%v", bad)
	}
}
