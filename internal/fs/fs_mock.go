package fs

// This is a mock implementation of the "fs" module for use with tests. It does
// not actually read from the file system. Instead, it reads from a pre-specified
// map of file paths to files. Writes are kept in memory so tests can inspect
// what a build produced.

import (
	"errors"
	"path"
	"strings"
	"sync"
	"syscall"
)

type mockFS struct {
	mutex  sync.Mutex
	files  map[string]string
	writes map[string]int
}

func MockFS(input map[string]string) *mockFS {
	files := make(map[string]string, len(input))
	for k, v := range input {
		files[k] = v
	}
	return &mockFS{files: files, writes: make(map[string]int)}
}

func (fs *mockFS) ReadFile(path string) (string, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if contents, ok := fs.files[path]; ok {
		return contents, nil
	}
	return "", syscall.ENOENT
}

func (fs *mockFS) WriteFile(path string, contents []byte) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.files[path] = string(contents)
	fs.writes[path]++
	return nil
}

// Returns how many times a path has been written since the mock was created
func (fs *mockFS) WriteCount(path string) int {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return fs.writes[path]
}

func (fs *mockFS) ModKey(path string) (ModKey, error) {
	return ModKey{}, errors.New("This is not available during tests")
}

func (*mockFS) IsAbs(p string) bool {
	return path.IsAbs(p)
}

func (*mockFS) Abs(p string) (string, bool) {
	return path.Clean(path.Join("/", p)), true
}

func (*mockFS) Dir(p string) string {
	return path.Dir(p)
}

func (*mockFS) Base(p string) string {
	return path.Base(p)
}

func (*mockFS) Ext(p string) string {
	return path.Ext(p)
}

func (*mockFS) Join(parts ...string) string {
	return path.Clean(path.Join(parts...))
}

func (*mockFS) Cwd() string {
	return "/"
}

func splitOnSlash(path string) (string, string) {
	if slash := strings.IndexByte(path, '/'); slash != -1 {
		return path[:slash], path[slash+1:]
	}
	return path, ""
}

func (*mockFS) Rel(base string, target string) (string, bool) {
	base = path.Clean(base)
	target = path.Clean(target)

	// Base cases
	if base == "" || base == "." {
		return target, true
	}
	if base == target {
		return ".", true
	}

	// Find the common parent directory
	for {
		bHead, bTail := splitOnSlash(base)
		tHead, tTail := splitOnSlash(target)
		if bHead != tHead {
			break
		}
		base = bTail
		target = tTail
	}

	// Stop now if base is a subpath of target
	if base == "" {
		return target, true
	}

	// Traverse up to the common parent
	commonParent := strings.Repeat("../", strings.Count(base, "/")+1)

	// Stop now if target is a subpath of base
	if target == "" {
		return commonParent[:len(commonParent)-1], true
	}

	// Otherwise, down to the parent
	return commonParent + target, true
}
