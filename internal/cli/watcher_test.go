package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWatchedFile(t *testing.T) {
	assert.True(t, isWatchedFile("templates/_layout.twig"))
	assert.True(t, isWatchedFile("modules/blog/controllers/PostsController.PHP"))
	assert.True(t, isWatchedFile(".actioncheck.yaml"))
	assert.False(t, isWatchedFile("web/assets/site.css"))
	assert.False(t, isWatchedFile("templates/.DS_Store"))
}

func TestWatcher_RunsCallbackOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0755))

	watcher, err := NewWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, watcher.Add(dir, filepath.Join(dir, "missing")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(ctx context.Context, changed []string) {
			select {
			case changes <- changed:
			default:
			}
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "notes.txt"), []byte("ignored"), 0644))
	entry := filepath.Join(dir, "blog", "_entry.twig")
	require.NoError(t, os.WriteFile(entry, []byte("{{ actionInput('blog/posts/save') }}"), 0644))

	select {
	case changed := <-changes:
		assert.Equal(t, []string{entry}, changed)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}
