package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, 42, value)

	_, exists = cache.Get("nonexistent")
	assert.False(t, exists)

	cache.Delete("key1")
	_, exists = cache.Get("key1")
	assert.False(t, exists)

	cache.Set("a", 1)
	cache.Set("b", 2)
	assert.Equal(t, 2, cache.Size())
}

func TestCache_FileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DefaultController.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	cache := NewCache[string, string]()
	cache.SetWithFileInfo(path, "parsed", info)

	value, ok := cache.GetWithFileInfo(path, info)
	assert.True(t, ok)
	assert.Equal(t, "parsed", value)

	// change size and mtime
	require.NoError(t, os.WriteFile(path, []byte("<?php class A {}"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	info, err = os.Stat(path)
	require.NoError(t, err)

	_, ok = cache.GetWithFileInfo(path, info)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size(), "stale item should be evicted")
}

func TestCache_GetOrLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php"), 0644))

	cache := NewCache[string, int]()
	calls := 0
	load := func() (int, error) {
		calls++
		return 7, nil
	}

	for i := 0; i < 3; i++ {
		value, err := cache.GetOrLoadFile(path, path, load)
		require.NoError(t, err)
		assert.Equal(t, 7, value)
	}
	assert.Equal(t, 1, calls)

	failing := errors.New("boom")
	_, err := cache.GetOrLoadFile("other", path, func() (int, error) { return 0, failing })
	assert.ErrorIs(t, err, failing)
	_, ok := cache.Get("other")
	assert.False(t, ok)
}

func TestCache_GetOrLoadFile_WriteDuringLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_entry.twig")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	cache := NewCache[string, string]()
	value, err := cache.GetOrLoadFile(path, path, func() (string, error) {
		// the file changes after it was stat'ed but before the cache is filled
		require.NoError(t, os.WriteFile(path, []byte("{{ actionInput('blog/posts/save') }}"), 0644))
		return "old", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old", value)

	value, err = cache.GetOrLoadFile(path, path, func() (string, error) {
		content, err := os.ReadFile(path)
		return string(content), err
	})
	require.NoError(t, err)
	assert.Equal(t, "{{ actionInput('blog/posts/save') }}", value)
}

func TestCache_GetOrLoadFile_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.php")
	cache := NewCache[string, int]()
	cache.Set(path, 1)

	value, err := cache.GetOrLoadFile(path, path, func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, value)
	assert.Equal(t, 0, cache.Size())
}
