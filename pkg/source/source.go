package source

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultCacheSize is the number of files a CachedSource keeps by default.
const DefaultCacheSize = 4096

// CachedSource memoizes reads from an underlying source so that several
// analyzers running over the same file set read each file once. It lives for
// a single analysis call and is never persisted.
// It is safe for concurrent use.
type CachedSource struct {
	src   ContentSource
	cache *lru.Cache[string, []byte]
}

// NewCached wraps src with an LRU cache holding up to size entries.
// A size <= 0 uses DefaultCacheSize.
func NewCached(src ContentSource, size int) *CachedSource {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New[string, []byte](size)
	return &CachedSource{src: src, cache: cache}
}

// Read implements ContentSource. Failed reads are not cached.
func (c *CachedSource) Read(path string) ([]byte, error) {
	if content, ok := c.cache.Get(path); ok {
		return content, nil
	}
	content, err := c.src.Read(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, content)
	return content, nil
}

// Len returns the number of cached files.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}
