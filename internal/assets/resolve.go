package assets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmined/assetextract/internal/utils"
)

const (
	// LatestSelector picks the highest versioned index.
	LatestSelector = "latest"
	indexExt       = ".json"
)

// ResolveIndex returns the path of the index selected by selector.
//
// "latest" (any case) picks the highest versioned <n>.<n>...json file in the
// indexes folder. Anything else is tried as indexes/<selector>.json, then
// indexes/<selector>, then as a path of its own (with ~ and $VAR expansion).
func (s *Store) ResolveIndex(selector string, logger *slog.Logger) (string, error) {
	if strings.EqualFold(selector, LatestSelector) {
		return s.LatestIndex(logger)
	}

	candidates := []string{
		filepath.Join(s.IndexesDir, selector+indexExt),
		filepath.Join(s.IndexesDir, selector),
	}
	if p, err := utils.ExpandPath(selector); err == nil {
		candidates = append(candidates, p)
	}

	for _, c := range candidates {
		if utils.FileExists(c) {
			logger.Debug("index candidate matched", "selector", selector, "path", c)
			return c, nil
		}
		logger.Debug("index candidate missing", "selector", selector, "path", c)
	}

	return "", fmt.Errorf("index table %q: %w", selector, ErrNotFound)
}

// LatestIndex picks the index whose stem parses to the greatest VersionTag.
// Files whose stem does not parse are ignored. Equal tags are broken by the
// longer tag, then by the greater file name.
func (s *Store) LatestIndex(logger *slog.Logger) (string, error) {
	if !utils.DirExists(s.IndexesDir) {
		return "", fmt.Errorf("folder %s: %w", s.IndexesDir, ErrNotFound)
	}

	entries, err := os.ReadDir(s.IndexesDir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.IndexesDir, err)
	}

	var (
		bestName string
		bestTag  VersionTag
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, indexExt) {
			continue
		}
		tag, ok := ParseVersionTag(strings.TrimSuffix(name, indexExt))
		if !ok {
			logger.Debug("ignoring unversioned index", "file", name)
			continue
		}
		if bestName == "" || newer(tag, name, bestTag, bestName) {
			bestName, bestTag = name, tag
		}
	}

	if bestName == "" {
		return "", fmt.Errorf("no index tables found in %s: %w", s.IndexesDir, ErrNotFound)
	}

	logger.Debug("latest index", "file", bestName, "version", bestTag.String())
	return filepath.Join(s.IndexesDir, bestName), nil
}

func newer(tag VersionTag, name string, best VersionTag, bestName string) bool {
	if c := tag.Compare(best); c != 0 {
		return c > 0
	}
	if len(tag) != len(best) {
		return len(tag) > len(best)
	}
	return name > bestName
}
