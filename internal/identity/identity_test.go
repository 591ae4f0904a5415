package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"record-mapper/internal/metadata"
)

type user struct {
	ID   int
	name string
}

func TestMemory(t *testing.T) {
	class := metadata.ClassID{PkgPath: "example.com/m", Name: "User"}
	other := metadata.ClassID{PkgPath: "example.com/m", Name: "Group"}

	m := NewMemory()
	u := &user{ID: 7}
	m.Put(class, 7, u)

	for _, id := range []any{7, int32(7), int64(7), uint8(7), 7.0} {
		got, ok := m.Load(class, id)
		assert.True(t, ok, "id %T", id)
		assert.Same(t, u, got)
	}

	_, ok := m.Load(class, "7")
	assert.False(t, ok)

	_, ok = m.Load(class, 7.5)
	assert.False(t, ok)

	_, ok = m.Load(other, 7)
	assert.False(t, ok)
}

func TestField(t *testing.T) {
	id := Field("ID")

	got, ok := id(&user{ID: 3})
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	got, ok = id(user{ID: 4})
	assert.True(t, ok)
	assert.Equal(t, 4, got)

	_, ok = id((*user)(nil))
	assert.False(t, ok)

	_, ok = Field("name")(&user{name: "x"})
	assert.False(t, ok, "unexported fields are not readable")

	_, ok = Field("Missing")(&user{})
	assert.False(t, ok)

	_, ok = id("not a struct")
	assert.False(t, ok)
}
