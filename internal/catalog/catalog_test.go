package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scanOpts() Options {
	return Options{
		Exclude:     []string{"node_modules/**", "*.min.js"},
		MaxFileSize: 1024,
	}
}

func TestScanMissingRootIsFatal(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), scanOpts())
	require.Error(t, err)
}

func TestScanRootMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "afile")
	writeFile(t, file, "x")
	_, err := Scan(file, scanOpts())
	require.Error(t, err)
}

func TestScanHonorsExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "app.ts"), "let a = 1\n")
	writeFile(t, filepath.Join(dir, "node_modules", "react", "index.js"), "module.exports = {}\n")
	writeFile(t, filepath.Join(dir, "bundle.min.js"), "x\n")

	cat, err := Scan(dir, scanOpts())
	require.NoError(t, err)

	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "src/app.ts", cat.Entries()[0].Path)

	// Property: no cataloged path matches a configured exclude pattern.
	for _, e := range cat.Entries() {
		assert.False(t, strings.HasPrefix(e.Path, "node_modules/"))
		assert.False(t, strings.HasSuffix(e.Path, ".min.js"))
	}
}

func TestScanFlagsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "big.sql"), strings.Repeat("x", 2048))

	cat, err := Scan(dir, scanOpts())
	require.NoError(t, err)

	// Oversized files count in totals but bear no content.
	assert.Equal(t, 2, cat.Len())

	big, ok := cat.Entry("big.sql")
	require.True(t, ok)
	assert.True(t, big.SizeExceeded)
	assert.False(t, big.ContentBearing())

	_, err = cat.Content("big.sql")
	assert.Error(t, err)

	small, ok := cat.Entry("small.go")
	require.True(t, ok)
	assert.True(t, small.ContentBearing())
}

func TestScanUnreadableFileDoesNotAbort(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are ignored when running as root")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.go"), "package main\n")
	locked := filepath.Join(dir, "locked.go")
	writeFile(t, locked, "package main\n")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	cat, err := Scan(dir, scanOpts())
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	entry, ok := cat.Entry("locked.go")
	require.True(t, ok)
	assert.True(t, entry.Unreadable)
	require.NotEmpty(t, cat.Warnings())
	assert.Equal(t, "locked.go", cat.Warnings()[0].Path)

	// The readable sibling is unaffected.
	data, err := cat.Content("ok.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
}

func TestContentReadsThroughCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n")

	cat, err := Scan(dir, scanOpts())
	require.NoError(t, err)

	first, err := cat.Content("main.go")
	require.NoError(t, err)

	// Mutating the file on disk is invisible once cached: the catalog is
	// sealed for the run.
	require.NoError(t, os.WriteFile(path, []byte("package changed\n"), 0o644))
	second, err := cat.Content("main.go")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestContentUnknownPath(t *testing.T) {
	dir := t.TempDir()
	cat, err := Scan(dir, scanOpts())
	require.NoError(t, err)
	_, err = cat.Content("ghost.go")
	assert.Error(t, err)
}

func TestLanguageInference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tsx"), "x\n")
	writeFile(t, filepath.Join(dir, "b.py"), "x\n")
	writeFile(t, filepath.Join(dir, "Dockerfile"), "FROM scratch\n")
	writeFile(t, filepath.Join(dir, "Gemfile"), "gem 'rails'\n")
	writeFile(t, filepath.Join(dir, "weird.xyz"), "x\n")

	cat, err := Scan(dir, scanOpts())
	require.NoError(t, err)

	langs := map[string]string{}
	for _, e := range cat.Entries() {
		langs[e.Path] = e.Language
	}
	assert.Equal(t, "tsx", langs["a.tsx"])
	assert.Equal(t, "python", langs["b.py"])
	assert.Equal(t, "dockerfile", langs["Dockerfile"])
	assert.Equal(t, "ruby", langs["Gemfile"])
	assert.Equal(t, "unknown", langs["weird.xyz"])
}

func TestScanEmissionOrderIsStable(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.go", "a.go", "b/inner.go"} {
		writeFile(t, filepath.Join(dir, name), "package x\n")
	}

	first, err := Scan(dir, scanOpts())
	require.NoError(t, err)
	second, err := Scan(dir, scanOpts())
	require.NoError(t, err)

	var firstPaths, secondPaths []string
	for _, e := range first.Entries() {
		firstPaths = append(firstPaths, e.Path)
	}
	for _, e := range second.Entries() {
		secondPaths = append(secondPaths, e.Path)
	}
	assert.Equal(t, firstPaths, secondPaths)
}
