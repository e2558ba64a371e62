// Package imagepath builds absolute image paths from an images directory and
// an annotation's image name, and answers existence checks for them.
package imagepath

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of stat results kept when no size is given.
const DefaultCacheSize = 4096

type statResult struct {
	exists bool
	isDir  bool
}

// Resolver joins image names against images directories. In validating mode
// a path is only accepted when it exists on disk. Stat results are cached
// until Reset.
type Resolver struct {
	validate bool
	stats    *lru.Cache[string, statResult]
}

// New creates a Resolver. cacheSize <= 0 selects DefaultCacheSize.
func New(validate bool, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, statResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create stat cache: %w", err)
	}
	return &Resolver{validate: validate, stats: cache}, nil
}

// Reset drops all cached stat results so the next checks hit the disk.
func (r *Resolver) Reset() {
	r.stats.Purge()
}

// Join returns the absolute, cleaned path of name inside imagesDir.
// An absolute name is used as-is.
func (r *Resolver) Join(imagesDir, name string) string {
	p := name
	if !filepath.IsAbs(name) {
		p = filepath.Join(imagesDir, name)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Resolve joins name against imagesDir and reports whether the entry may be
// included: always when not validating, otherwise only if the file exists.
func (r *Resolver) Resolve(imagesDir, name string) (string, bool) {
	p := r.Join(imagesDir, name)
	if !r.validate {
		return p, true
	}
	return p, r.Exists(p)
}

// Exists reports whether anything exists at path.
func (r *Resolver) Exists(path string) bool {
	return r.stat(path).exists
}

// IsDir reports whether path is an existing directory.
func (r *Resolver) IsDir(path string) bool {
	return r.stat(path).isDir
}

// FirstDir returns the first candidate that is an existing directory. When
// none exists the last candidate is returned unchecked; it is the fallback
// of last resort. Returns "" for no candidates.
func (r *Resolver) FirstDir(candidates ...string) string {
	for _, c := range candidates {
		if r.IsDir(c) {
			return c
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[len(candidates)-1]
}

func (r *Resolver) stat(path string) statResult {
	path = filepath.Clean(path)
	if res, ok := r.stats.Get(path); ok {
		return res
	}

	var res statResult
	if info, err := os.Stat(path); err == nil {
		res = statResult{exists: true, isDir: info.IsDir()}
	}
	r.stats.Add(path, res)
	return res
}
