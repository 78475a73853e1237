package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements FileSystemProvider in memory for tests.
//
// Paths are normalized to forward slashes. Write faults can be injected
// per path with FailWrites, which makes AppendFile return a permission
// error for that path - the store must then report that table Failed while
// other tables proceed.
//
// Not safe for concurrent use; the merge store is single-writer by design.
type MemoryFileSystem struct {
	files      map[string][]byte
	dirs       map[string]struct{}
	failWrites map[string]struct{}
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files:      make(map[string][]byte),
		dirs:       make(map[string]struct{}),
		failWrites: make(map[string]struct{}),
	}
}

// AddFile seeds a file, creating parent directory entries.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	filePath = normalize(filePath)
	mfs.files[filePath] = []byte(content)
	mfs.addParents(filePath)
}

// FailWrites makes every AppendFile to the given path fail, simulating an
// unwritable file.
func (mfs *MemoryFileSystem) FailWrites(filePath string) {
	mfs.failWrites[normalize(filePath)] = struct{}{}
}

// Content returns the current content of a file, or "" if absent.
func (mfs *MemoryFileSystem) Content(filePath string) string {
	return string(mfs.files[normalize(filePath)])
}

func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	filePath = normalize(filePath)
	content, ok := mfs.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	// Copy so callers cannot mutate stored content
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (mfs *MemoryFileSystem) AppendFile(filePath string, data []byte) error {
	filePath = normalize(filePath)
	if _, fail := mfs.failWrites[filePath]; fail {
		return &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrPermission}
	}
	mfs.files[filePath] = append(mfs.files[filePath], data...)
	mfs.addParents(filePath)
	return nil
}

func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	statPath = normalize(statPath)
	if content, ok := mfs.files[statPath]; ok {
		return &memoryFileInfo{
			name:    path.Base(statPath),
			size:    int64(len(content)),
			mode:    0o644,
			modTime: time.Now(),
		}, nil
	}
	if _, ok := mfs.dirs[statPath]; ok {
		return &memoryFileInfo{
			name:    path.Base(statPath),
			mode:    0o755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: statPath, Err: fs.ErrNotExist}
}

func (mfs *MemoryFileSystem) MkdirAll(dirPath string) error {
	dirPath = normalize(dirPath)
	if _, isFile := mfs.files[dirPath]; isFile {
		return fmt.Errorf("path is a file, not a directory: %s", dirPath)
	}
	mfs.dirs[dirPath] = struct{}{}
	mfs.addParents(dirPath + "/.")
	return nil
}

func (mfs *MemoryFileSystem) addParents(filePath string) {
	dir := path.Dir(filePath)
	for dir != "." && dir != "/" && dir != "" {
		if _, exists := mfs.dirs[dir]; exists {
			return
		}
		mfs.dirs[dir] = struct{}{}
		dir = path.Dir(dir)
	}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// Verify MemoryFileSystem implements FileSystemProvider at compile time
var _ FileSystemProvider = (*MemoryFileSystem)(nil)
