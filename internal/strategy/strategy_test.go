package strategy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-mapper/internal/identity"
	"record-mapper/internal/metadata"
	"record-mapper/internal/record"
	"record-mapper/internal/scalar"
)

type address struct {
	City string
	Zip  string
}

type person struct {
	ID       int
	Name     string
	nickname string
	Address  *address
	Tags     []string
	Manager  *person
}

func (p *person) GetNickname() string { return p.nickname }

func (p *person) SetNickname(n string, _ ...bool) { p.nickname = n }

func (p *person) Broken() (string, error) { return "", errors.New("broken getter") }

var (
	personType  = reflect.TypeFor[person]()
	addressType = reflect.TypeFor[address]()
	personClass = metadata.ClassOf(personType)
)

func bind(t *testing.T, typ reflect.Type, name string, acc metadata.Accessors, s Strategy) Field {
	t.Helper()

	get, set, err := Bind(typ, acc)
	require.NoError(t, err)

	return Field{Name: name, Get: get, Set: set, Strategy: s}
}

func direct(name string) metadata.Accessors {
	return metadata.Accessors{Getter: metadata.Direct(name), Setter: metadata.Direct(name)}
}

func addressStrategy(t *testing.T) Strategy {
	return NoArgObject(addressType, FieldData(addressType, ShapeMap,
		bind(t, addressType, "city", direct("City"), nil),
		bind(t, addressType, "zip", direct("Zip"), nil),
	))
}

func personStrategy(t *testing.T, shape Shape) Strategy {
	return FieldData(personType, shape,
		bind(t, personType, "id", direct("ID"), Scalar(scalar.KindInt, 0, scalar.CategoryDefault)),
		bind(t, personType, "name", direct("Name"), nil),
		bind(t, personType, "nickname", metadata.Accessors{
			Getter: metadata.Method("GetNickname"),
			Setter: metadata.Method("SetNickname"),
		}, nil),
		bind(t, personType, "address", direct("Address"), addressStrategy(t)),
		bind(t, personType, "tags", direct("Tags"), List(Whatever(), reflect.TypeFor[string]())),
	)
}

func TestBind(t *testing.T) {
	p := &person{ID: 1, nickname: "al"}
	obj := reflect.ValueOf(p)

	get, set, err := Bind(personType, metadata.Accessors{Getter: metadata.Method("GetNickname")})
	require.NoError(t, err)
	assert.Nil(t, set)

	v, err := get(obj)
	require.NoError(t, err)
	assert.Equal(t, "al", v)

	_, set, err = Bind(personType, direct("ID"))
	require.NoError(t, err)
	require.NoError(t, set(obj, 42.0))
	assert.Equal(t, 42, p.ID)

	err = set(obj, 1.5)
	require.ErrorIs(t, err, ErrInvalidData)

	err = set(obj, "x")
	require.ErrorIs(t, err, ErrInvalidData)

	get, _, err = Bind(personType, metadata.Accessors{Getter: metadata.Method("Broken")})
	require.NoError(t, err)

	_, err = get(obj)
	require.EqualError(t, err, "broken getter")

	_, _, err = Bind(personType, metadata.Accessors{Getter: metadata.Method("Missing")})
	require.ErrorIs(t, err, metadata.ErrMethodMissing)

	_, _, err = Bind(personType, direct("nickname"))
	require.ErrorIs(t, err, metadata.ErrMethodMissing)
}

func TestAssign(t *testing.T) {
	type id int

	tests := []struct {
		name string
		typ  reflect.Type
		in   any
		want any
	}{
		{"nil to zero", reflect.TypeFor[int](), nil, 0},
		{"assignable", reflect.TypeFor[any](), "x", "x"},
		{"named scalar", reflect.TypeFor[id](), int64(3), id(3)},
		{"take address", reflect.TypeFor[*string](), "x", ptr("x")},
		{"follow pointer", reflect.TypeFor[string](), ptr("y"), "y"},
		{"pointer to converted", reflect.TypeFor[*int](), 2.0, ptr(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assign(tt.typ, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}

	_, err := Assign(reflect.TypeFor[[]string](), map[string]any{})
	require.ErrorIs(t, err, ErrInvalidData)
}

func ptr[T any](v T) *T {
	return &v
}

func TestFieldDataExtract(t *testing.T) {
	p := &person{
		ID:       7,
		Name:     "Ada",
		nickname: "countess",
		Address:  &address{City: "London", Zip: "W1"},
		Tags:     []string{"math", "poetry"},
	}

	got, err := personStrategy(t, ShapeMap).Extract(p)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":       7,
		"name":     "Ada",
		"nickname": "countess",
		"address":  map[string]any{"city": "London", "zip": "W1"},
		"tags":     []any{"math", "poetry"},
	}, got)

	got, err = personStrategy(t, ShapeRecord).Extract(*p)
	require.NoError(t, err)

	rec, ok := got.(*record.Ordered)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "nickname", "address", "tags"}, rec.Keys())

	got, err = personStrategy(t, ShapeMap).Extract(&person{})
	require.NoError(t, err)
	assert.Nil(t, got.(map[string]any)["address"])
	assert.Nil(t, got.(map[string]any)["tags"])

	_, err = personStrategy(t, ShapeMap).Extract("not a person")
	require.ErrorIs(t, err, ErrInvalidData)
}

func TestFieldDataHydrate(t *testing.T) {
	p := &person{Name: "kept", Address: &address{City: "Paris", Zip: "75001"}}
	keptAddress := p.Address

	got, err := personStrategy(t, ShapeMap).Hydrate(map[string]any{
		"id":       float64(9),
		"nickname": "g",
		"address":  map[string]any{"city": "Lyon"},
		"tags":     []any{"a", "b"},
		"unknown":  true,
	}, p)
	require.NoError(t, err)
	require.Same(t, p, got)

	assert.Equal(t, 9, p.ID)
	assert.Equal(t, "kept", p.Name, "absent keys are skipped")
	assert.Equal(t, "g", p.nickname)
	assert.Same(t, keptAddress, p.Address, "nested objects are updated in place")
	assert.Equal(t, address{City: "Lyon", Zip: "75001"}, *p.Address)
	assert.Equal(t, []string{"a", "b"}, p.Tags)

	_, err = personStrategy(t, ShapeMap).Hydrate("nope", p)
	require.ErrorIs(t, err, ErrInvalidData)

	_, err = personStrategy(t, ShapeMap).Hydrate(map[string]any{}, nil)
	require.ErrorIs(t, err, ErrInvalidData)
}

func TestFieldDataHydrateErrorPath(t *testing.T) {
	s := personStrategy(t, ShapeMap)

	_, err := s.Hydrate(map[string]any{"tags": []any{"a", []any{}}}, &person{})
	require.ErrorIs(t, err, ErrInvalidData)

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{"tags", "1"}, pe.Path)
	assert.Contains(t, err.Error(), "tags.1: invalid data")

	_, err = s.Hydrate(map[string]any{"id": 1.5}, &person{})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{"id"}, pe.Path)
}

func TestNoArgObject(t *testing.T) {
	s := addressStrategy(t)

	got, err := s.Hydrate(map[string]any{"city": "Oslo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, &address{City: "Oslo"}, got)

	got, err = s.Hydrate(nil, &address{City: "x"})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.Extract((*address)(nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdentifiableValue(t *testing.T) {
	boss := &person{ID: 1, Name: "Boss"}

	store := identity.NewMemory()
	store.Put(personClass, 1, boss)

	inline := NoArgObject(personType, personStrategy(t, ShapeMap))
	byID := IdentifiableValue(personClass, inline, identity.Field("ID"), store)

	got, err := byID.Extract(boss)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = byID.Hydrate(float64(1), nil)
	require.NoError(t, err)
	assert.Same(t, boss, got)

	_, err = byID.Hydrate(2, nil)
	require.ErrorIs(t, err, ErrInvalidData)
	assert.Contains(t, err.Error(), "unknown strategy.person identifier 2")

	got, err = byID.Hydrate(map[string]any{"name": "New"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New", got.(*person).Name)

	inlineOnly := IdentifiableValue(personClass, inline, nil, nil)

	got, err = inlineOnly.Extract(boss)
	require.NoError(t, err)
	assert.Equal(t, "Boss", got.(map[string]any)["name"])

	_, err = inlineOnly.Hydrate(1, nil)
	require.ErrorIs(t, err, ErrInvalidData)

	got, err = byID.Extract(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList(t *testing.T) {
	s := List(addressStrategy(t), reflect.TypeFor[*address]())

	got, err := s.Hydrate([]any{map[string]any{"city": "A"}, map[string]any{"city": "B"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []*address{{City: "A"}, {City: "B"}}, got)

	raw, err := s.Extract(got)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"city": "A", "zip": ""},
		map[string]any{"city": "B", "zip": ""},
	}, raw)

	got, err = s.Hydrate(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Hydrate("x", nil)
	require.ErrorIs(t, err, ErrInvalidData)

	untyped, err := List(Whatever(), nil).Hydrate([]int{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, untyped)
}

func TestScalarAndSerializable(t *testing.T) {
	ts := Scalar(scalar.KindTime, scalar.KindString, scalar.CategoryDefault)
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := ts.Hydrate("2024-01-02T03:04:05Z", nil)
	require.NoError(t, err)
	assert.True(t, when.Equal(got.(time.Time)))

	raw, err := ts.Extract(when)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", raw)

	_, err = ts.Hydrate(true, nil)
	require.ErrorIs(t, err, ErrInvalidData)

	s := SerializableValue(List(Whatever(), reflect.TypeFor[string]()))

	raw, err = s.Extract([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, raw)

	got, err = s.Hydrate(`["c"]`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got)

	_, err = s.Hydrate(`[`, nil)
	require.ErrorIs(t, err, ErrInvalidData)

	_, err = s.Hydrate(3, nil)
	require.ErrorIs(t, err, ErrInvalidData)
}
