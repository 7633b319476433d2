package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "a.DOCX"))
	touch(t, filepath.Join(root, "old", "legacy.doc"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".hidden.pdf"))
	touch(t, filepath.Join(root, "~$notice.docx"))
	touch(t, filepath.Join(root, ".cache", "cached.pdf"))

	paths, err := ScanDirectory(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a.DOCX"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "old", "legacy.doc"),
	}, paths)
}

func TestScanDirectoryMissingRoot(t *testing.T) {
	_, err := ScanDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestScanDirectoryEmpty(t *testing.T) {
	paths, err := ScanDirectory(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}
