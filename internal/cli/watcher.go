package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/actioncheck/internal/utils"
)

// DefaultDebounce is how long the watcher waits for changes to settle
const DefaultDebounce = 100 * time.Millisecond

// watchedFiles accepts the file types that can change a check's outcome
var watchedFiles = utils.AnyFilter(
	utils.ExtensionFilter(".twig"),
	utils.ExtensionFilter(".php"),
	utils.ExtensionFilter(".json"),
	utils.ExtensionFilter(".yaml"),
	utils.ExtensionFilter(".yml"),
)

// Watcher reruns a callback when relevant files change. Bursts of events are
// debounced and the callback always runs on the goroutine calling Run, so
// runs never overlap.
type Watcher struct {
	fs          *fsnotify.Watcher
	debounce    time.Duration
	diagnostics *utils.DiagnosticSystem
	watched     map[string]bool
}

// NewWatcher creates a watcher
func NewWatcher(debounce time.Duration, diagnostics *utils.DiagnosticSystem) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Watcher{
		fs:          watcher,
		debounce:    debounce,
		diagnostics: diagnostics,
		watched:     make(map[string]bool),
	}, nil
}

// Add watches roots and their subdirectories, skipping dependency and
// hidden directories. Missing roots are ignored. Add must not be called
// concurrently with Run, but may be called from the onChange callback.
func (w *Watcher) Add(roots ...string) error {
	filter := utils.DefaultDirectoryFilter()

	for _, root := range roots {
		if !utils.IsDir(root) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil || !entry.IsDir() {
				return nil
			}
			if path != root && !filter(path, entry) {
				return filepath.SkipDir
			}
			return w.addDir(path)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addDir(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	w.diagnostics.Debug("Watching %s", dir)
	return nil
}

// Run calls onChange with the changed files once events settle, until ctx
// is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	var (
		pending []string
		settle  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && utils.IsDir(event.Name) {
				if err := w.Add(event.Name); err != nil {
					w.diagnostics.Warn("Cannot watch %s: %v", event.Name, err)
				}
				continue
			}
			if !isWatchedFile(event.Name) {
				continue
			}
			if !slices.Contains(pending, event.Name) {
				pending = append(pending, event.Name)
			}
			settle = time.After(w.debounce)

		case <-settle:
			changed := pending
			pending, settle = nil, nil
			slices.Sort(changed)
			onChange(ctx, changed)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("Watcher error: %v", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// isWatchedFile matches an event path by name only, since removed files can
// no longer be stat'ed.
func isWatchedFile(path string) bool {
	return watchedFiles(path, eventEntry(path))
}

// eventEntry describes the file named by a watcher event
type eventEntry string

func (e eventEntry) Name() string               { return filepath.Base(string(e)) }
func (e eventEntry) IsDir() bool                { return false }
func (e eventEntry) Type() fs.FileMode          { return 0 }
func (e eventEntry) Info() (fs.FileInfo, error) { return os.Lstat(string(e)) }
