package fsutil

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
	require.NoError(t, os.WriteFile(path, []byte("# test\n"), 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.hcl"))
	writeFile(t, filepath.Join(root, "nested", "b.hcl"))
	writeFile(t, filepath.Join(root, "nested", "c.txt"))

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "nested", "b.hcl"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestFindAll(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.hcl")
	b := filepath.Join(root, "sub", "b.hcl")
	txt := filepath.Join(root, "notes.txt")
	writeFile(t, a)
	writeFile(t, b)
	writeFile(t, txt)

	t.Run("directory and overlapping file are deduplicated", func(t *testing.T) {
		files, err := FindAll([]string{root, a}, ".hcl")
		require.NoError(t, err)
		assert.Len(t, files, 2)
		assert.ElementsMatch(t, []string{a, b}, files)
	})

	t.Run("missing paths are skipped", func(t *testing.T) {
		files, err := FindAll([]string{filepath.Join(root, "missing"), b}, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{b}, files)
	})

	t.Run("explicit file with another extension is ignored", func(t *testing.T) {
		files, err := FindAll([]string{txt}, ".hcl")
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
