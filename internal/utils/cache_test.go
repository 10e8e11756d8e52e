package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	c := NewFileCache[int]()
	_, ok := c.Get(path)
	assert.False(t, ok)

	require.NoError(t, c.Put(path, 1))
	v, ok := c.Get(path)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))
	_, ok = c.Get(path)
	assert.False(t, ok, "size change invalidates")
	assert.Zero(t, c.Len())

	require.NoError(t, c.Put(path, 2))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	_, ok = c.Get(path)
	assert.False(t, ok, "mod time change invalidates")

	require.NoError(t, c.Put(path, 3))
	require.NoError(t, os.Remove(path))
	_, ok = c.Get(path)
	assert.False(t, ok, "removed file invalidates")
}

func TestFileCache_PutMissingFile(t *testing.T) {
	c := NewFileCache[string]()
	err := c.Put(filepath.Join(t.TempDir(), "missing"), "x")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, c.Len())
}

func TestFileCache_ConcurrentAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	c := NewFileCache[int]()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Put(path, i)
			c.Get(path)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
