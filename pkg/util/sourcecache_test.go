package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestSourceCacheRead(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.ts", "export type A = string;\n")

	cache := NewSourceCache(0, nil)
	defer cache.Close()

	data, err := cache.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "export type A = string;\n", string(data))

	_, err = cache.Read(path)
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Loads)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Cached)
}

func TestSourceCacheEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.ts", "")

	cache := NewSourceCache(0, nil)
	defer cache.Close()

	data, err := cache.Read(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSourceCacheMissingFile(t *testing.T) {
	cache := NewSourceCache(0, nil)
	defer cache.Close()

	_, err := cache.Read(filepath.Join(t.TempDir(), "nope.ts"))
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestSourceCacheLimit(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ts", "a")
	b := writeFile(t, dir, "b.ts", "b")

	cache := NewSourceCache(1, nil)
	defer cache.Close()

	_, err := cache.Read(a)
	require.NoError(t, err)
	_, err = cache.Read(b)
	assert.ErrorContains(t, err, "limit reached")

	// Cached files are still served at the limit.
	_, err = cache.Read(a)
	assert.NoError(t, err)
}

func TestSourceCacheInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.ts", "type A = 1;")

	cache := NewSourceCache(0, nil)
	defer cache.Close()

	_, err := cache.Read(path)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(path))
	assert.Equal(t, 0, cache.Len())

	writeFile(t, dir, "types.ts", "type B = 2;")
	data, err := cache.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "type B = 2;", string(data))

	assert.NoError(t, cache.Invalidate("unknown.ts"))
}

func TestSourceCacheConcurrentReads(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("f%d.ts", i), fmt.Sprintf("type T%d = %d;", i, i)))
	}

	cache := NewSourceCache(0, nil)
	defer cache.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range paths {
				data, err := cache.Read(p)
				if assert.NoError(t, err) {
					assert.Equal(t, fmt.Sprintf("type T%d = %d;", i, i), string(data))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Len())
	assert.Equal(t, int64(10), cache.Stats().Loads)
}
