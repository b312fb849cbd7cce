package cli

import (
	"path/filepath"

	"github.com/toyz/actioncheck/internal/namespaces"
	"github.com/toyz/actioncheck/internal/utils"
)

// ProjectLocator finds the root directory of a Craft project
type ProjectLocator struct {
	markers []string
}

// NewProjectLocator creates a locator recognizing a project by its composer
// manifest or its application config.
func NewProjectLocator() *ProjectLocator {
	return &ProjectLocator{
		markers: []string{
			namespaces.ComposerFile,
			filepath.Join("config", "app.php"),
		},
	}
}

// Locate walks up from start to the first directory holding a marker file
// and returns it, or start itself when no parent qualifies.
func (l *ProjectLocator) Locate(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for dir := abs; ; {
		if l.IsProject(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// reached the file system root
			return abs
		}
		dir = parent
	}
}

// IsProject reports whether dir holds one of the marker files
func (l *ProjectLocator) IsProject(dir string) bool {
	for _, marker := range l.markers {
		if utils.FileExists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}
