package tree

import (
	"sync"

	"impactscan/internal/core/ports"
)

// ExistsCache memoizes access checks. Share one between the import
// resolver and Options.FS so each path is checked once per build.
type ExistsCache struct {
	fs      ports.FileSystem
	entries sync.Map
}

func NewExistsCache(fs ports.FileSystem) *ExistsCache {
	return &ExistsCache{fs: fs}
}

// cachedFS reuses fs when it already caches.
func cachedFS(fs ports.FileSystem) *ExistsCache {
	if c, ok := fs.(*ExistsCache); ok {
		return c
	}
	return NewExistsCache(fs)
}

func (c *ExistsCache) Exists(path string) bool {
	if v, ok := c.entries.Load(path); ok {
		return v.(bool)
	}
	exists := c.fs.Exists(path)
	c.entries.Store(path, exists)
	return exists
}

type resolveKey struct {
	from      string
	specifier string
}

type resolveResult struct {
	path string
	ok   bool
}

// resolveCache is shared by the loader and the classifier so each import
// is resolved once per build.
type resolveCache struct {
	resolver ports.ImportResolver
	entries  sync.Map
}

func (c *resolveCache) Resolve(fromFile, specifier string) (string, bool) {
	key := resolveKey{from: fromFile, specifier: specifier}
	if v, ok := c.entries.Load(key); ok {
		r := v.(resolveResult)
		return r.path, r.ok
	}
	path, ok := c.resolver.Resolve(fromFile, specifier)
	c.entries.Store(key, resolveResult{path: path, ok: ok})
	return path, ok
}
