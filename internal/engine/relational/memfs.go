package relational

import (
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"
)

// memFS is a minimal in-memory filesystem holding generated migration files,
// enough for golang-migrate's iofs source to read.
type memFS struct {
	files map[string]string
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]string)}
}

func (m *memFS) writeFile(name, content string) {
	m.files[name] = content
}

func (m *memFS) Open(name string) (fs.File, error) {
	name = strings.TrimPrefix(name, "./")
	content, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	return &memFile{name: name, content: content}, nil
}

func (m *memFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." && name != "" {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: os.ErrNotExist}
	}

	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, &memFileInfo{name: n, size: int64(len(m.files[n]))})
	}
	return entries, nil
}

type memFile struct {
	name    string
	content string
	offset  int
}

func (f *memFile) Stat() (fs.FileInfo, error) {
	return &memFileInfo{name: f.name, size: int64(len(f.content))}, nil
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.offset >= len(f.content) {
		return 0, io.EOF
	}
	n := copy(p, f.content[f.offset:])
	f.offset += n
	return n, nil
}

func (f *memFile) Close() error { return nil }

type memFileInfo struct {
	name string
	size int64
}

func (i *memFileInfo) Name() string               { return i.name }
func (i *memFileInfo) Size() int64                { return i.size }
func (i *memFileInfo) Mode() fs.FileMode          { return 0o444 }
func (i *memFileInfo) ModTime() time.Time         { return time.Time{} }
func (i *memFileInfo) IsDir() bool                { return false }
func (i *memFileInfo) Sys() any                   { return nil }
func (i *memFileInfo) Type() fs.FileMode          { return 0 }
func (i *memFileInfo) Info() (fs.FileInfo, error) { return i, nil }
