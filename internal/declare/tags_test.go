package declare

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-mapper/internal/metadata"
)

func TestParseTag(t *testing.T) {
	tag := reflect.StructTag(`json:"email" data:"email,nullable" data.create:"mail,getter=,setter=SetMail" ` +
		`validate:"not_null,blocker|playground,rule=email,priority=5" validate.create:"length,min=3,max=[1;2.5;'a,b']" ` +
		`strategy.create:"scalar,type=string"`)

	got, err := ParseTag(tag)
	require.NoError(t, err)

	assert.Equal(t, []DataDecl{
		{Field: "email", Nullable: true},
		{Subset: "create", Field: "mail", Getter: Ptr(""), Setter: Ptr("SetMail")},
	}, got.Data)

	assert.Equal(t, []StrategyDecl{
		{Subset: "create", Name: "scalar", Options: metadata.Options{"type": "string"}},
	}, got.Strategies)

	assert.Equal(t, []ValidatorDecl{
		{Name: "not_null", Priority: 1, Blocker: true},
		{Name: "playground", Options: metadata.Options{"rule": "email"}, Priority: 5},
		{Subset: "create", Name: "length", Priority: 1, Options: metadata.Options{
			"min": int64(3),
			"max": []any{int64(1), 2.5, "a,b"},
		}},
	}, got.Validators)
}

func TestParseTagSkip(t *testing.T) {
	got, err := ParseTag(`data:"id" data.create:"-" validate:""`)
	require.NoError(t, err)

	assert.Equal(t, []DataDecl{{Field: "id"}}, got.Data)
	assert.Empty(t, got.Validators)
}

func TestParseTagErrors(t *testing.T) {
	tests := []struct {
		name string
		tag  reflect.StructTag
	}{
		{"unterminated", `data:"id`},
		{"missing colon", `data"id"`},
		{"unknown data option", `data:"id,readonly"`},
		{"getter without value", `data:"id,getter"`},
		{"bad nullable", `data:"id,nullable=maybe"`},
		{"missing rule name", `validate:",min=1"`},
		{"bad priority", `validate:"x,priority=high"`},
		{"bad blocker", `validate:"x,blocker=1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTag(tt.tag)
			assert.ErrorIs(t, err, ErrMalformedTag)
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-1", int64(-1)},
		{"1.5", 1.5},
		{"text", "text"},
		{"'42'", "42"},
		{"[]", []any{}},
		{"[a;[b;c]]", []any{"a", []any{"b", "c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}
