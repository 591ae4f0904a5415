package cache

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-mapper/internal/metadata"
)

var testClass = metadata.ClassID{PkgPath: "example.com/app/model", Name: "User"}

func newCache(t *testing.T) *FileCache {
	t.Helper()

	c, err := New(t.TempDir(), DefaultUmask, nil)
	require.NoError(t, err)

	return c
}

func pathOf(t *testing.T, c *FileCache, class metadata.ClassID) string {
	t.Helper()

	path, err := c.Path(class)
	require.NoError(t, err)

	return path
}

func TestPath(t *testing.T) {
	c := &FileCache{root: "/var/cache/rm"}

	assert.Equal(t, filepath.FromSlash("/var/cache/rm/example.com/app/model/User.metadata.yaml"), pathOf(t, c, testClass))
	assert.Equal(t, filepath.FromSlash("/var/cache/rm/Local.metadata.yaml"), pathOf(t, c, metadata.ClassID{Name: "Local"}))
}

func TestPathStaysUnderRoot(t *testing.T) {
	tests := []metadata.ClassID{
		metadata.ParseClassID("../../x.Y"),
		metadata.ParseClassID("a/../../b.Y"),
		metadata.ParseClassID("./a.Y"),
		metadata.ParseClassID("/etc.Y"),
		metadata.ParseClassID("a//b.Y"),
		{PkgPath: "a", Name: ".."},
		{PkgPath: "a", Name: `b\c`},
		{PkgPath: "a"},
	}

	c := newCache(t)

	for _, class := range tests {
		t.Run(class.String(), func(t *testing.T) {
			_, err := c.Path(class)
			require.ErrorIs(t, err, ErrInvalidClass)

			assert.False(t, c.Set(class, "x"))

			_, ok := c.Get(class)
			assert.False(t, ok)
		})
	}

	entries, err := os.ReadDir(filepath.Dir(c.Root()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "nothing written next to the root")
}

func TestRoundTrip(t *testing.T) {
	blobs := []any{
		nil,
		"plain",
		"\xff\xfe",
		map[string]any{"raw": []any{"ok", "bad \xc3\x28"}},
		int64(-3),
		math.Inf(1),
		[]any{},
		map[string]any{},
		map[string]any{
			"fields": []any{"id", "name"},
			"nested": map[string]any{
				"list":  []any{int64(1), 2.5, "x", true, nil, []any{"deep"}},
				"empty": "",
				"num":   "12",
			},
		},
	}

	c := newCache(t)

	for _, blob := range blobs {
		require.True(t, c.Set(testClass, blob))

		got, ok := c.Get(testClass)
		require.True(t, ok)

		want, err := metadata.FromAny(blob)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "blob %#v came back as %#v", blob, got.Any())
	}
}

func TestGetMiss(t *testing.T) {
	c := newCache(t)

	_, ok := c.Get(testClass)
	assert.False(t, ok, "cold entry")

	path := pathOf(t, c, testClass)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	for _, content := range []string{"", "fields: [unterminated", "? [a]\n: 1\n"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, ok = c.Get(testClass)
		assert.False(t, ok, "content %q", content)
	}
}

func TestSetRejectsLiveValues(t *testing.T) {
	c := newCache(t)

	assert.False(t, c.Set(testClass, map[string]any{"rule": func() {}}))
	assert.False(t, c.Set(testClass, []any{struct{ X int }{1}}))

	_, err := os.Stat(pathOf(t, c, testClass))
	assert.True(t, os.IsNotExist(err))
}

func TestDisabled(t *testing.T) {
	c, err := New("", DefaultUmask, nil)
	require.NoError(t, err)

	assert.False(t, c.Enabled())
	assert.False(t, c.Set(testClass, "x"))

	_, ok := c.Get(testClass)
	assert.False(t, ok)
	assert.NoError(t, c.Purge())
}

func TestRenameFailureLeavesNothingBehind(t *testing.T) {
	c := newCache(t)

	var renamed string

	c.rename = func(oldpath, _ string) error {
		renamed = oldpath

		// the temporary file is complete at this point
		data, err := os.ReadFile(oldpath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "id")

		return errors.New("injected rename failure")
	}

	assert.False(t, c.Set(testClass, map[string]any{"fields": []any{"id"}}))
	require.NotEmpty(t, renamed)

	_, err := os.Stat(pathOf(t, c, testClass))
	assert.True(t, os.IsNotExist(err), "final path must stay absent")

	_, err = os.Stat(renamed)
	assert.True(t, os.IsNotExist(err), "temporary file must be removed")

	entries, err := os.ReadDir(filepath.Dir(pathOf(t, c, testClass)))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok := c.Get(testClass)
	assert.False(t, ok)
}

func TestRenameFailureKeepsPreviousFile(t *testing.T) {
	c := newCache(t)
	require.True(t, c.Set(testClass, "first"))

	c.rename = func(string, string) error { return errors.New("injected") }
	assert.False(t, c.Set(testClass, "second"))

	got, ok := c.Get(testClass)
	require.True(t, ok)

	s, _ := got.AsString()
	assert.Equal(t, "first", s)
}

func TestFileMode(t *testing.T) {
	c, err := New(t.TempDir(), 0o027, nil)
	require.NoError(t, err)

	require.True(t, c.Set(testClass, "x"))

	info, err := os.Stat(pathOf(t, c, testClass))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestNewErrors(t *testing.T) {
	t.Run("root under a regular file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := New(filepath.Join(file, "cache"), DefaultUmask, nil)
		require.ErrorIs(t, err, ErrCacheDirCreate)
		assert.Contains(t, err.Error(), file)
	})

	t.Run("read-only root", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}

		root := filepath.Join(t.TempDir(), "ro")
		require.NoError(t, os.Mkdir(root, 0o500))

		_, err := New(root, DefaultUmask, nil)
		require.ErrorIs(t, err, ErrCacheDirNotWritable)
	})

	t.Run("creates missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "a", "b")

		c, err := New(root, DefaultUmask, nil)
		require.NoError(t, err)
		assert.DirExists(t, root)

		entries, err := os.ReadDir(c.Root())
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})
}

func TestPurge(t *testing.T) {
	c := newCache(t)
	require.True(t, c.Set(testClass, "x"))
	require.True(t, c.Set(metadata.ClassID{Name: "Other"}, "y"))

	require.NoError(t, c.Purge())

	_, ok := c.Get(testClass)
	assert.False(t, ok)
	assert.DirExists(t, c.Root())
}
