package cache

import (
	"github.com/fgoll/source-code-plan/internal/fs"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// This cache uses information from the "stat" syscall to try to avoid re-
// reading files from the file system during subsequent builds if the file
// hasn't changed. The assumption is reading the file metadata is faster than
// reading the file contents. Concurrent reads of the same path share a single
// read of the file system.

type FSCache struct {
	entries *lru.Cache[string, *fsEntry]
	reads   singleflight.Group
}

type fsEntry struct {
	contents       string
	modKey         fs.ModKey
	isModKeyUsable bool
}

func (c *FSCache) ReadFile(fsys fs.FS, path string) (string, error) {
	// If the file's modification key hasn't changed since it was cached, assume
	// the contents of the file are also the same and skip reading the file.
	modKey, modKeyErr := fsys.ModKey(path)
	if entry, ok := c.entries.Get(path); ok && entry.isModKeyUsable && modKeyErr == nil && entry.modKey == modKey {
		return entry.contents, nil
	}

	value, err, _ := c.reads.Do(path, func() (interface{}, error) {
		contents, err := fsys.ReadFile(path)
		if err != nil {
			return "", err
		}
		c.entries.Add(path, &fsEntry{
			contents:       contents,
			modKey:         modKey,
			isModKeyUsable: modKeyErr == nil,
		})
		return contents, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Returns the number of files currently held by the cache
func (c *FSCache) Len() int {
	return c.entries.Len()
}
