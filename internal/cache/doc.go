// Package cache persists metadata blobs on disk, one YAML file per class.
//
// Files live under a root directory at <root>/<package path>/<Name>.metadata.yaml.
// Writes go to a temporary file in the target directory which is then renamed
// over the final path, so concurrent readers and writers in other processes
// never observe a partial file; when two writers race, the last rename wins.
//
// An empty root disables the cache: Get always misses and Set always fails.
package cache
