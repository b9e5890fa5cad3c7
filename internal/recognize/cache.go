package recognize

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Cache remembers recognition results for the lifetime of the process.
// Entries never expire; a batch run is bounded, so memory growth is
// acceptable. Guarded by a mutex so concurrent orchestrators can share
// one instance.
type Cache struct {
	mu      sync.Mutex
	results map[string]Result
}

// NewCache creates an empty recognition cache.
func NewCache() *Cache {
	return &Cache{results: make(map[string]Result)}
}

// Get returns the cached result for key, if any.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[key]
	return r, ok
}

// Put stores a result under key. Re-storing the same key overwrites,
// which under the "same key, same value" invariant is a no-op.
func (c *Cache) Put(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = r
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// FileKey derives a cache key from a file's path, size and
// modification time, so a retagged or replaced file misses the cache.
func FileKey(f File) string {
	return fmt.Sprintf("%s|%d|%d", f.Path, f.Size, f.ModTime)
}

// AlbumKey derives a cache key from the sorted, deduplicated set of
// (title, artist) pairs across the input files. Order-insensitive:
// the same file set always maps to the same key.
func AlbumKey(files []File) string {
	seen := make(map[string]bool, len(files))
	var pairs []string
	for _, f := range files {
		p := strings.ToLower(f.Title) + "\x00" + strings.ToLower(f.Artist)
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	sort.Strings(pairs)
	return "album|" + strings.Join(pairs, "|")
}
