// Package testutil builds fixture projects for tests from txtar archives.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// WriteProject extracts a txtar archive into a fresh temporary directory and
// returns the directory.
func WriteProject(t testing.TB, archive string) string {
	t.Helper()
	dir := t.TempDir()
	WriteArchive(t, dir, archive)
	return dir
}

// WriteArchive extracts a txtar archive into dir. Leading indentation shared
// by the whole archive is not stripped; file names use forward slashes.
func WriteArchive(t testing.TB, dir, archive string) {
	t.Helper()

	ar := txtar.Parse([]byte(strings.TrimLeft(archive, "\n")))
	require.NotEmpty(t, ar.Files, "archive has no files")

	for _, file := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(file.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, file.Data, 0644))
	}
}
