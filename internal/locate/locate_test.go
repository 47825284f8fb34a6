package locate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
}

func TestFindAtRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "beacon"))

	assert.Equal(t, filepath.Join(dir, "beacon"), Find(dir, "beacon"))
}

func TestFindPrefersRootOverSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "beacon"))
	writeFile(t, filepath.Join(dir, "bin", "beacon"))

	assert.Equal(t, filepath.Join(dir, "beacon"), Find(dir, "beacon"))
}

func TestFindInConventionalSubdir(t *testing.T) {
	for _, sub := range []string{"bin", "cli", "beacon", "beacon-cli"} {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, sub, "beacon"))

		assert.Equal(t, filepath.Join(dir, sub, "beacon"), Find(dir, "beacon"), "subdir %s", sub)
	}
}

func TestFindNestedDeep(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c", "beacon")
	writeFile(t, nested)

	assert.Equal(t, nested, Find(dir, "beacon"))
}

func TestFindAbsent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "other-tool"))

	assert.Empty(t, Find(dir, "beacon"))
}

func TestFindIgnoresDirectoriesWithMatchingName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "beacon"), 0o755))

	assert.Empty(t, Find(dir, "beacon"))
}

func TestFindBoundsDepth(t *testing.T) {
	dir := t.TempDir()
	deep := dir
	for i := 0; i < maxWalkDepth+3; i++ {
		deep = filepath.Join(deep, "d")
	}
	writeFile(t, filepath.Join(deep, "beacon"))

	assert.Empty(t, Find(dir, "beacon"))
}

func TestFindFuzzyMatchesQualifiedAssetName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "beacon-cli-linux-x64"))

	assert.Equal(t, filepath.Join(dir, "beacon-cli-linux-x64"), FindFuzzy(dir, "beacon"))
}

func TestFindFuzzyEmptyShortName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "beacon"))

	assert.Empty(t, FindFuzzy(dir, ""))
}
