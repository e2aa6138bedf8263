package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// This is a cache of the contents of a set of files. The idea is to be able
// to reuse file reads between builds that share a cache set (e.g. a long-lived
// process calling the API repeatedly) and make subsequent builds faster. This
// only works if:
//
//   - The cached information must be considered immutable. There is no way to
//     enforce this in Go, but please be disciplined about this.
//
//   - The information in the cache must not depend at all on the contents of
//     any file other than the file being cached. Invalidating an entry in the
//     cache does not also invalidate any entries that depend on that file.
type CacheSet struct {
	FSCache *FSCache
}

// The maximum number of files whose contents are kept around
const DefaultFSCacheSize = 4096

func MakeCacheSet() *CacheSet {
	return &CacheSet{
		FSCache: NewFSCache(DefaultFSCacheSize),
	}
}

func NewFSCache(size int) *FSCache {
	entries, err := lru.New[string, *fsEntry](size)
	if err != nil {
		// This only happens for a non-positive size
		panic("Internal error")
	}
	return &FSCache{entries: entries}
}
