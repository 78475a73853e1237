// Package filesystem provides the filesystem abstraction used by the merge
// store.
//
// This package defines the interface for the small set of file operations
// the store needs (read, stat, append, mkdir), enabling testability through
// an in-memory implementation while maintaining compatibility with the OS
// filesystem.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing, with
//     per-path write-fault injection
package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// FileSystemProvider is the seam between the merge store and durable
// storage. There is deliberately no truncating write: persisted tables are
// append-only, so the only mutation is AppendFile.
type FileSystemProvider interface {
	// ReadFile reads a specific file at the given path.
	ReadFile(path string) ([]byte, error)

	// AppendFile appends data to the file at path, creating it (with any
	// missing parent directories already in place) if it does not exist.
	AppendFile(path string, data []byte) error

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)

	// MkdirAll creates a directory along with any missing parents.
	MkdirAll(path string) error
}
