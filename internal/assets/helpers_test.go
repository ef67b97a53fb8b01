package assets

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// newStoreDir creates <tmp>/assets/{objects,indexes} and returns the root.
func newStoreDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "indexes"), 0o755))
	return root
}

func writeIndex(t *testing.T, root, name, body string) string {
	t.Helper()
	path := filepath.Join(root, "assets", "indexes", name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeObject(t *testing.T, root, hash, content string) string {
	t.Helper()
	path := filepath.Join(root, "assets", "objects", hash[:2], hash)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openStore(t *testing.T, root string) *Store {
	t.Helper()
	s, err := OpenStore(root)
	require.NoError(t, err)
	return s
}
