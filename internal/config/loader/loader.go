// Package loader reads markctl configuration sources into plain maps.
//
// Sources are merged with DeepMerge before being decoded into typed
// settings by the config package.
package loader

import (
	"io/fs"
	"os"
)

// Loader is implemented by every configuration source.
type Loader interface {
	// Load returns the source as a nested map, or nil, nil when the
	// source does not exist.
	Load() (map[string]any, error)
}

// FileSystem abstracts file reads so tests can use an in-memory tree.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// MapFS adapts an fs.FS, such as fstest.MapFS, to FileSystem.
type MapFS struct {
	FS fs.FS
}

// ReadFile reads the entire file at path.
func (m MapFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.FS, path)
}

// DeepMerge merges src into dst and returns dst. Nested maps merge
// recursively; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
