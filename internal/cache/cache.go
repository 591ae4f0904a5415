package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"record-mapper/internal/metadata"
)

// Ext is the suffix of every cache file.
const Ext = ".metadata.yaml"

// DefaultUmask is applied to created files and directories when no other is configured.
const DefaultUmask os.FileMode = 0o022

var (
	// ErrCacheDirCreate is returned by New when the root directory cannot be created.
	ErrCacheDirCreate = errors.New("cache directory cannot be created")
	// ErrCacheDirNotWritable is returned by New when the root directory is not writable.
	ErrCacheDirNotWritable = errors.New("cache directory is not writable")
	// ErrInvalidClass is returned by Path for a class that does not map to a file under the root.
	ErrInvalidClass = errors.New("class cannot be mapped to a cache file")
)

// FileCache is a directory of per-class metadata blobs. It is safe for concurrent use.
type FileCache struct {
	root   string
	umask  os.FileMode
	logger *zap.Logger

	// rename moves a finished temporary file into place.
	rename func(oldpath, newpath string) error
}

// New returns a cache rooted at root. An empty root returns a disabled cache.
// Otherwise the root is created if needed and checked for writability.
func New(root string, umask os.FileMode, logger *zap.Logger) (*FileCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &FileCache{
		root:   root,
		umask:  umask & os.ModePerm,
		logger: logger.Named("cache"),
		rename: os.Rename,
	}

	if root == "" {
		c.logger.Debug("cache disabled")

		return c, nil
	}

	if err := os.MkdirAll(root, c.dirMode()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheDirCreate, root, err)
	}

	probe, err := os.CreateTemp(root, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheDirNotWritable, root, err)
	}

	probe.Close()
	os.Remove(probe.Name())

	return c, nil
}

// Enabled reports whether the cache has a root directory.
func (c *FileCache) Enabled() bool {
	return c.root != ""
}

// Root returns the root directory, empty when disabled.
func (c *FileCache) Root() string {
	return c.root
}

// Path returns the file holding the blob of a class. Package path elements
// and the name must be plain path segments, so the file stays under the root.
func (c *FileCache) Path(class metadata.ClassID) (string, error) {
	parts := []string{c.root}

	if class.PkgPath != "" {
		for _, seg := range strings.Split(class.PkgPath, "/") {
			if !plainSegment(seg) {
				return "", fmt.Errorf("%w: %s: package path element %q", ErrInvalidClass, class, seg)
			}

			parts = append(parts, seg)
		}
	}

	if !plainSegment(class.Name) {
		return "", fmt.Errorf("%w: %s: name %q", ErrInvalidClass, class, class.Name)
	}

	parts = append(parts, class.Name+Ext)

	return filepath.Join(parts...), nil
}

func plainSegment(seg string) bool {
	return seg != "" && seg != "." && seg != ".." && !strings.ContainsAny(seg, `/\`)
}

// Get returns the blob stored for a class. Missing, unreadable and malformed
// files are all reported as a miss.
func (c *FileCache) Get(class metadata.ClassID) (metadata.Value, bool) {
	if !c.Enabled() {
		return metadata.Value{}, false
	}

	path, err := c.Path(class)
	if err != nil {
		c.logger.Debug("class not cacheable", zap.Error(err))

		return metadata.Value{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return metadata.Value{}, false
	}

	var v metadata.Value
	if err := yaml.Unmarshal(data, &v); err != nil {
		c.logger.Warn("discarding malformed cache file", zap.String("path", path), zap.Error(err))

		return metadata.Value{}, false
	}

	return v, true
}

// Set stores the blob of a class. It returns false when the cache is disabled,
// when blob holds anything other than scalars, lists and string-keyed maps, or
// when the write fails. A failed write leaves no file behind.
func (c *FileCache) Set(class metadata.ClassID, blob any) bool {
	if !c.Enabled() {
		return false
	}

	v, err := metadata.FromAny(blob)
	if err != nil {
		c.logger.Debug("refusing to cache blob", zap.Stringer("class", class), zap.Error(err))

		return false
	}

	path, err := c.Path(class)
	if err != nil {
		c.logger.Debug("class not cacheable", zap.Error(err))

		return false
	}

	if err := c.write(path, v); err != nil {
		c.logger.Warn("cache write failed", zap.String("path", path), zap.Error(err))

		return false
	}

	return true
}

func (c *FileCache) write(path string, v metadata.Value) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.dirMode()); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	tmpPath := tmp.Name()

	if err := tmp.Chmod(c.fileMode()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("chmod: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("close: %w", err)
	}

	if err := c.rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// Purge removes every cached blob. The root directory itself is kept.
func (c *FileCache) Purge() error {
	if !c.Enabled() {
		return nil
	}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return fmt.Errorf("purge %s: %w", c.root, err)
	}

	var errs []error

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}

	c.logger.Info("cache purged", zap.String("path", c.root), zap.Int("entries", len(entries)))

	return errors.Join(errs...)
}

func (c *FileCache) fileMode() os.FileMode {
	return 0o666 &^ c.umask
}

func (c *FileCache) dirMode() os.FileMode {
	return 0o777 &^ c.umask
}
