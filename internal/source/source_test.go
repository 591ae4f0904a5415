package source

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-mapper/internal/declare"
	"record-mapper/internal/diagnostic"
	"record-mapper/internal/metadata"
)

type profile struct {
	_        struct{} `validate:"profile_check,priority=3"`
	ID       int      `data:"id" validate:"not_null,blocker|scalar,type=int"`
	Nick     string   `data:"nickname,nullable" strategy:"scalar,type=string"`
	password string   `data:"password,getter="`
	bio      string   `data:"bio,getter=Biography,setter=Describe"`
	Internal string
}

func (p *profile) SetPassword(pw string) { p.password = pw }

func (p *profile) Biography() string { return p.bio }

func (p *profile) Describe(bio string, _ ...string) { p.bio = bio }

func build(t *testing.T, sample any) (map[string]*metadata.ClassMetadata, *diagnostic.Diagnostics) {
	t.Helper()

	decl, err := declare.ReadType(reflect.TypeOf(sample))
	require.NoError(t, err)

	result, diags, err := Build(decl)
	require.NoError(t, err)

	return result, diags
}

func TestBuildDefaultSubset(t *testing.T) {
	result, diags := build(t, profile{})
	assert.Empty(t, diags.All())

	require.Len(t, result, 1)
	md := result[metadata.DefaultSubset]

	assert.Equal(t, []string{"id", "nickname", "password", "bio"}, md.Fields)
	assert.Equal(t, metadata.Accessors{Getter: metadata.Direct("ID"), Setter: metadata.Direct("ID")}, md.Accessors["id"])
	assert.Equal(t, metadata.Accessors{Setter: metadata.Method("SetPassword")}, md.Accessors["password"])
	assert.True(t, md.Accessors["password"].Getter.IsAbsent())
	assert.Equal(t, metadata.Accessors{Getter: metadata.Method("Biography"), Setter: metadata.Method("Describe")}, md.Accessors["bio"])

	assert.Nil(t, md.Strategies["id"])
	assert.Equal(t, &metadata.RuleRef{Name: "scalar", Options: metadata.Options{"type": "string"}}, md.Strategies["nickname"])
	assert.True(t, md.Nullable["nickname"])
	assert.False(t, md.Nullable["id"])

	require.Len(t, md.Validators["id"], 2)
	assert.Equal(t, "not_null", md.Validators["id"][0].Name)
	assert.True(t, md.Validators["id"][0].Blocker)
	assert.Equal(t, "scalar", md.Validators["id"][1].Name)

	assert.Equal(t, []metadata.ValidatorRef{
		{RuleRef: metadata.RuleRef{Name: "profile_check"}, Priority: 3},
	}, md.ClassValidators())
}

type twoSubsets struct {
	_ struct{} `validate.a:"check_a" validate.b:"check_b"`
	A string   `data.a:"alpha"`
	B string   `data.b:"beta"`
}

func TestBuildSubsetsAreIsolated(t *testing.T) {
	result, diags := build(t, twoSubsets{})
	assert.Empty(t, diags.All())

	require.Len(t, result, 2)

	a := result["a"]
	assert.Equal(t, "a", a.Subset)
	assert.Equal(t, []string{"alpha"}, a.Fields)
	require.Len(t, a.ClassValidators(), 1)
	assert.Equal(t, "check_a", a.ClassValidators()[0].Name)
	assert.False(t, a.HasField("beta"))

	b := result["b"]
	assert.Equal(t, []string{"beta"}, b.Fields)
	require.Len(t, b.ClassValidators(), 1)
	assert.Equal(t, "check_b", b.ClassValidators()[0].Name)
}

type orphanClassValidator struct {
	_    struct{} `validate.ghost:"never_runs" strategy.ghost:"field_data"`
	Name string   `data:"name"`
}

func TestBuildDropsClassDeclarationsWithoutFields(t *testing.T) {
	result, diags := build(t, orphanClassValidator{})

	assert.NotContains(t, result, "ghost")
	require.Len(t, diags.Warnings, 2)
	assert.Equal(t, diagnostic.CodeClassValidatorDropped, diags.Warnings[0].Code)
	assert.Equal(t, "ghost", diags.Warnings[0].Subset)
	assert.Equal(t, diagnostic.CodeClassStrategyDropped, diags.Warnings[1].Code)
}

type duplicate struct {
	First  string `data:"name"`
	Second string `data:"name"`
}

type sameNameOtherSubset struct {
	First  string `data:"name"`
	Second string `data.other:"name"`
}

func TestBuildDuplicateField(t *testing.T) {
	decl, err := declare.ReadType(reflect.TypeOf(duplicate{}))
	require.NoError(t, err)

	_, _, err = Build(decl)
	require.ErrorIs(t, err, metadata.ErrDuplicateField)

	var mdErr *metadata.MetadataError
	require.ErrorAs(t, err, &mdErr)
	assert.Equal(t, "name", mdErr.Field)
	assert.Equal(t, "duplicate", mdErr.Class.Name)

	result, _ := build(t, sameNameOtherSubset{})
	assert.Len(t, result, 2)
}

func TestBuildAccessorErrors(t *testing.T) {
	class := metadata.ClassID{PkgPath: "example.com/m", Name: "Thing"}

	methods := map[string]declare.Method{
		"GetValue":   {Name: "GetValue", Exported: true},
		"SetValue":   {Name: "SetValue", Exported: true, Params: 1},
		"hidden":     {Name: "hidden", Exported: false},
		"SetTwo":     {Name: "SetTwo", Exported: true, Params: 2},
		"SetOpt":     {Name: "SetOpt", Exported: true, Params: 2, Variadic: true},
		"SetNone":    {Name: "SetNone", Exported: true},
		"GetWithArg": {Name: "GetWithArg", Exported: true, Params: 1},
	}

	tests := []struct {
		name string
		data declare.DataDecl
		want error
	}{
		{"synthesized ok", declare.DataDecl{}, nil},
		{"missing getter", declare.DataDecl{Getter: declare.Ptr("GetNothing")}, metadata.ErrMethodMissing},
		{"unexported", declare.DataDecl{Getter: declare.Ptr("hidden")}, metadata.ErrMethodNotPublic},
		{"getter with argument", declare.DataDecl{Getter: declare.Ptr("GetWithArg")}, metadata.ErrMethodArity},
		{"setter two required", declare.DataDecl{Setter: declare.Ptr("SetTwo")}, metadata.ErrMethodArity},
		{"setter without params", declare.DataDecl{Setter: declare.Ptr("SetNone")}, metadata.ErrMethodArity},
		{"setter optional param", declare.DataDecl{Setter: declare.Ptr("SetOpt")}, nil},
		{"both absent", declare.DataDecl{Getter: declare.Ptr(""), Setter: declare.Ptr("")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := &declare.Declarations{
				Class:   class,
				Methods: methods,
				Properties: []declare.Property{
					{Name: "value", Data: []declare.DataDecl{tt.data}},
				},
			}

			result, _, err := Build(decl)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, []string{"value"}, result[""].Fields)

				return
			}

			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "example.com/m.Thing")
			assert.Contains(t, err.Error(), `field "value"`)
		})
	}
}

func TestBuildMissingSynthesizedAccessor(t *testing.T) {
	decl := &declare.Declarations{
		Class: metadata.ClassID{Name: "Bare"},
		Properties: []declare.Property{
			{Name: "secret", Data: []declare.DataDecl{{}}},
		},
	}

	_, _, err := Build(decl)
	require.ErrorIs(t, err, metadata.ErrMethodMissing)
	assert.Contains(t, err.Error(), "GetSecret")
}

func TestBuildStrategyOverride(t *testing.T) {
	decl := &declare.Declarations{
		Class: metadata.ClassID{Name: "Twice"},
		Properties: []declare.Property{{
			Name:   "v",
			Direct: true,
			Data:   []declare.DataDecl{{}},
			Strategies: []declare.StrategyDecl{
				{Name: "first"},
				{Name: "second"},
			},
		}},
	}

	result, diags, err := Build(decl)
	require.NoError(t, err)
	assert.Equal(t, "second", result[""].Strategies["v"].Name)
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeStrategyOverridden, diags.Warnings[0].Code)
}
