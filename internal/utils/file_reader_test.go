package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReader_Caching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.twig")
	require.NoError(t, os.WriteFile(path, []byte("{{ actionInput('a/b') }}"), 0644))

	reader := NewFileReader()

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{{ actionInput('a/b') }}", content)
	assert.Equal(t, 1, reader.CachedFiles())

	require.NoError(t, os.WriteFile(path, []byte("{{ actionInput('c/d/e') }}"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	content, err = reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{{ actionInput('c/d/e') }}", content)

	reader.InvalidateFile(path)
	assert.Equal(t, 0, reader.CachedFiles())
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.ReadFile("")
	assert.Error(t, err)

	_, err = reader.ReadFile(filepath.Join(t.TempDir(), "missing.twig"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
