package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t)

	content := []byte("%PDF-1.4\ntest payload\n%%EOF\n")
	relPath, err := store.Save(7, "passport_book_1.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "7/passport_book_1.pdf", relPath)

	rc, info, err := store.Open(relPath)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), info.Size())
}

func TestSaveRejectsBadFilenames(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name     string
		filename string
	}{
		{"empty", ""},
		{"path separator", "sub/dir.pdf"},
		{"parent traversal", "../escape.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(7, tt.filename, bytes.NewReader([]byte("x")))
			assert.Error(t, err)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(7, "a.pdf", bytes.NewReader([]byte("first version")))
	require.NoError(t, err)
	relPath, err := store.Save(7, "a.pdf", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	rc, info, err := store.Open(relPath)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Equal(t, int64(len("second")), info.Size())
}

func TestOpenMissingArtifact(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Open("7/nothing_here.pdf")
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestExists(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(3, "other_1.pdf", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	assert.True(t, store.Exists(relPath))
	assert.False(t, store.Exists("3/other_2.pdf"))
	// a directory is not an artifact
	assert.False(t, store.Exists("3"))
}

func TestFullPathDeniesTraversal(t *testing.T) {
	store := newTestStore(t)

	tests := []string{
		"../outside.pdf",
		"../../etc/passwd",
		"7/../../outside.pdf",
	}
	for _, rel := range tests {
		t.Run(rel, func(t *testing.T) {
			_, err := store.FullPath(rel)
			assert.Error(t, err)
		})
	}

	// in-bounds paths resolve under the base
	full, err := store.FullPath("7/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.BasePath(), "7", "a.pdf"), full)
}

func TestFullPathRejectsSiblingPrefix(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "clients"))
	require.NoError(t, err)

	// a sibling directory sharing the base path as a string prefix
	sibling := filepath.Join(root, "clients-old")
	require.NoError(t, os.MkdirAll(sibling, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sibling, "secret.pdf"), []byte("x"), 0644))

	_, err = store.FullPath("../clients-old/secret.pdf")
	assert.Error(t, err)
	assert.False(t, store.Exists("../clients-old/secret.pdf"))
}

func TestListPDFsNaturalOrder(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"passport_book_10.pdf", "passport_book_2.pdf", "passport_book_1.pdf"} {
		_, err := store.Save(5, name, bytes.NewReader([]byte("x")))
		require.NoError(t, err)
	}
	// non-PDF entries are filtered out
	require.NoError(t, os.WriteFile(filepath.Join(store.ClientDir(5), "notes.txt"), []byte("x"), 0644))

	pdfs, err := store.ListPDFs(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"passport_book_1.pdf", "passport_book_2.pdf", "passport_book_10.pdf"}, pdfs)
}

func TestListPDFsMissingFolder(t *testing.T) {
	store := newTestStore(t)

	pdfs, err := store.ListPDFs(999)
	require.NoError(t, err)
	assert.Empty(t, pdfs)
}

func TestRemoveClientDir(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(7, "a.pdf", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	require.True(t, store.Exists(relPath))

	require.NoError(t, store.RemoveClientDir(7))
	assert.False(t, store.Exists(relPath))
	assert.NoDirExists(t, store.ClientDir(7))

	// removing an absent folder is not an error
	assert.NoError(t, store.RemoveClientDir(7))
}
