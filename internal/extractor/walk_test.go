package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "not code\n")

	files, err := Walk([]string{dir}, true, WalkOptions{Extensions: []string{".go"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", filepath.Base(files[0]))
}

func TestWalk_SkipsFixedDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "node_modules", "lib.js"), "x\n")
	writeFile(t, filepath.Join(dir, "src", "main.js"), "x\n")

	files, err := Walk([]string{dir}, true, WalkOptions{Extensions: []string{".js"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.js", filepath.Base(files[0]))
}

func TestWalk_NonRecursiveStopsAtTopLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "nested", "deep.go"), "package main\n")

	files, err := Walk([]string{dir}, false, WalkOptions{Extensions: []string{".go"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "top.go", filepath.Base(files[0]))
}

func TestWalk_ExcludeOverridesInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "keep_test.go"), "package main\n")

	files, err := Walk([]string{dir}, true, WalkOptions{
		Extensions: []string{".go"},
		Include:    []string{"**/*.go"},
		Exclude:    []string{"**/*_test.go"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "keep.go", filepath.Base(files[0]))
}
