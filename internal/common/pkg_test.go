package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in      string
		pkgPath string
		name    string
	}{
		{"example.com/app/model.User", "example.com/app/model", "User"},
		{"model.User", "model", "User"},
		{"User", "", "User"},
		{"github.com/a.b/c.D", "github.com/a.b/c", "D"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pkgPath, name := SplitQualified(tt.in)
			assert.Equal(t, tt.pkgPath, pkgPath)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestAppendUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, AppendUnique([]string{"a", "b"}, "b", "c", "a"))
	assert.Equal(t, []int{1}, AppendUnique[[]int](nil, 1, 1))
}

func TestPkgAlias(t *testing.T) {
	assert.Equal(t, "model", PkgAlias("example.com/app/model"))
	assert.Empty(t, PkgAlias(""))
}
