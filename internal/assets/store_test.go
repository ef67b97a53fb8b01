package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Layout(t *testing.T) {
	root := newStoreDir(t)
	s := openStore(t, root)

	assert.Equal(t, filepath.Join(root, "assets"), s.AssetsDir)
	assert.Equal(t, filepath.Join(root, "assets", "objects"), s.ObjectsDir)
	assert.Equal(t, filepath.Join(root, "assets", "indexes"), s.IndexesDir)
}

func TestOpenStore_MissingFolders(t *testing.T) {
	t.Run("missing-root", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope")
		_, err := OpenStore(missing)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("missing-assets", func(t *testing.T) {
		root := t.TempDir()
		_, err := OpenStore(root)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), filepath.Join(root, "assets"))
	})

	t.Run("missing-objects", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "indexes"), 0o755))
		_, err := OpenStore(root)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), filepath.Join(root, "assets", "objects"))
	})

	t.Run("indexes-optional", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "objects"), 0o755))
		_, err := OpenStore(root)
		require.NoError(t, err)
	})
}

func TestStore_ObjectPath(t *testing.T) {
	s := openStore(t, newStoreDir(t))

	p, err := s.ObjectPath("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.ObjectsDir, "de", "deadbeef"), p)

	for _, bad := range []string{"", "d", "../x", "ab/cd", ".."} {
		_, err := s.ObjectPath(bad)
		assert.ErrorIs(t, err, ErrMalformedEntry, bad)
	}
}
