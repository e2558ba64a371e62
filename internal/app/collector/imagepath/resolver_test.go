package imagepath

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, validate bool) *Resolver {
	t.Helper()
	r, err := New(validate, 16)
	require.NoError(t, err)
	return r
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
}

func TestResolver_Join(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newResolver(t, false)

	assert.Equal(t, filepath.Join(dir, "a.jpg"), r.Join(dir, "a.jpg"))
	assert.Equal(t, filepath.Join(dir, "sub", "a.jpg"), r.Join(dir, "sub/./a.jpg"))
	assert.Equal(t, filepath.Join(dir, "b.jpg"), r.Join("/elsewhere", filepath.Join(dir, "b.jpg")),
		"absolute names ignore the images dir")

	rel := r.Join("relative/images", "a.jpg")
	assert.True(t, filepath.IsAbs(rel), "relative images dirs are made absolute, got %q", rel)
}

func TestResolver_ResolveWithoutValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newResolver(t, false)

	p, ok := r.Resolve(dir, "missing.jpg")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "missing.jpg"), p)
}

func TestResolver_ResolveWithValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "present.jpg"))
	r := newResolver(t, true)

	_, ok := r.Resolve(dir, "present.jpg")
	assert.True(t, ok)

	p, ok := r.Resolve(dir, "missing.jpg")
	assert.False(t, ok)
	assert.Equal(t, filepath.Join(dir, "missing.jpg"), p, "path is still reported for diagnostics")
}

func TestResolver_FirstDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resized := filepath.Join(dir, "resized")
	file := filepath.Join(dir, "not-a-dir")
	touch(t, file)
	r := newResolver(t, true)

	assert.Equal(t, dir, r.FirstDir(resized, file, dir, "/fallback"),
		"missing dirs and regular files are skipped")

	require.NoError(t, os.Mkdir(resized, 0o755))
	r = newResolver(t, true)
	assert.Equal(t, resized, r.FirstDir(resized, dir, "/fallback"))

	assert.Equal(t, "/fallback", r.FirstDir(filepath.Join(dir, "nope"), "/fallback"),
		"last candidate is used unconditionally")
	assert.Equal(t, "", r.FirstDir())
}

func TestResolver_CachesStat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	img := filepath.Join(dir, "a.jpg")
	touch(t, img)
	r := newResolver(t, true)

	require.True(t, r.Exists(img))
	require.NoError(t, os.Remove(img))

	assert.True(t, r.Exists(img), "result comes from the cache within one pass")
	assert.False(t, newResolver(t, true).Exists(img))

	r.Reset()
	assert.False(t, r.Exists(img), "reset forces a fresh stat")
}

func TestNew_DefaultCacheSize(t *testing.T) {
	t.Parallel()

	r, err := New(true, 0)
	require.NoError(t, err)
	for i := range DefaultCacheSize + 1 {
		r.Exists(filepath.Join("/nonexistent", strconv.Itoa(i)))
	}
	assert.Equal(t, DefaultCacheSize, r.stats.Len())
}
