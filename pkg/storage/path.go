package storage

import (
	"path/filepath"
	"strings"
)

// BasePath symbolic location every storage item lives under, unless the
// provider is told otherwise.
const BasePath = "~/App_Data"

// Storable
// any object stored as a single file. FileName must be stable and already
// validated as filesystem safe, it may contain sub directories.
type Storable interface {
	FileName() string
}

// PathMapper resolves a symbolic location into a directory path.
type PathMapper interface {
	MapPath(path string) string
}

type MapperFunc func(path string) string

func (f MapperFunc) MapPath(path string) string { return f(path) }

// RootMapper
// "~" means Root, absolute paths are kept and relative ones are joined to Root.
type RootMapper struct {
	Root string
}

func (m RootMapper) MapPath(path string) string {
	switch {
	case path == "~":
		return filepath.Clean(m.Root)
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(m.Root, path[2:])
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(m.Root, path)
	}
}
