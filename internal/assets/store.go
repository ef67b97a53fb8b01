// Package assets reads a content-addressed asset store (a `.minecraft`-style
// folder with assets/indexes and assets/objects) and materialises its entries
// under their logical paths.
package assets

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openmined/assetextract/internal/utils"
)

const (
	assetsDir  = "assets"
	objectsDir = "objects"
	indexesDir = "indexes"
)

// Store is a validated asset root.
type Store struct {
	Root       string
	AssetsDir  string
	ObjectsDir string
	IndexesDir string
}

// OpenStore expands root and checks that root, root/assets and
// root/assets/objects exist. The indexes folder is only checked when an index
// is resolved from it.
func OpenStore(root string) (*Store, error) {
	abs, err := utils.ExpandPath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", root, err)
	}

	s := &Store{
		Root:       abs,
		AssetsDir:  filepath.Join(abs, assetsDir),
		ObjectsDir: filepath.Join(abs, assetsDir, objectsDir),
		IndexesDir: filepath.Join(abs, assetsDir, indexesDir),
	}

	for _, dir := range []string{s.Root, s.AssetsDir, s.ObjectsDir} {
		if !utils.DirExists(dir) {
			return nil, fmt.Errorf("folder %s: %w", dir, ErrNotFound)
		}
	}

	return s, nil
}

// ObjectPath returns <root>/assets/objects/<hash[:2]>/<hash>.
func (s *Store) ObjectPath(hash string) (string, error) {
	if len(hash) < 2 {
		return "", fmt.Errorf("%w: hash %q is shorter than 2 characters", ErrMalformedEntry, hash)
	}
	if strings.ContainsAny(hash, `/\`) || hash == ".." {
		return "", fmt.Errorf("%w: hash %q is not a file name", ErrMalformedEntry, hash)
	}
	return filepath.Join(s.ObjectsDir, hash[:2], hash), nil
}
