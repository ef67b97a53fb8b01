package assets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"
)

const (
	objectsKey = "objects"
	hashKey    = "hash"
	sizeKey    = "size"
)

// Entry is one object of an index. Fields holds every field of the index
// record as decoded, including hash and size.
type Entry struct {
	Path   string
	Hash   string
	Size   int64
	Fields map[string]any
}

// Validate reports whether the entry can be copied out of the store: the
// logical path must be a non-empty local path and the hash at least two
// characters.
func (e Entry) Validate() error {
	if e.Path == "" || !filepath.IsLocal(filepath.FromSlash(e.Path)) {
		return fmt.Errorf("%w: path %q escapes the output directory", ErrMalformedEntry, e.Path)
	}
	if e.Hash == "" {
		return fmt.Errorf("%w: %s has no hash", ErrMalformedEntry, e.Path)
	}
	if len(e.Hash) < 2 {
		return fmt.Errorf("%w: %s has hash %q shorter than 2 characters", ErrMalformedEntry, e.Path, e.Hash)
	}
	return nil
}

// Index maps logical paths to entries. It is read-only once loaded.
type Index struct {
	Path    string
	entries map[string]Entry
}

// NewIndex builds an index from entries; a later entry replaces an earlier one
// with the same path.
func NewIndex(entries ...Entry) *Index {
	idx := &Index{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		idx.entries[e.Path] = e
	}
	return idx
}

// Len is the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Get looks up the entry for a logical path.
func (idx *Index) Get(path string) (Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Entries returns all entries sorted by logical path.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
}

// LoadIndex reads and decodes the index file at path.
func LoadIndex(path string, logger *slog.Logger) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	idx, err := ParseIndex(data)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	idx.Path = path

	logger.Info("read index", "path", path, "objects", idx.Len())
	return idx, nil
}

// ParseIndex decodes an index document of the form
// {"objects": {"<path>": {"hash": "...", "size": 0, ...}}}.
// Records that are not objects, or whose hash is not a string, are kept with
// an empty hash and rejected by Entry.Validate at copy time.
func ParseIndex(data []byte) (*Index, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid utf-8", ErrParse)
	}

	var doc any
	if err := jsonUnmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	top, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is not an object", ErrSchema)
	}
	rawObjects, ok := top[objectsKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q field", ErrSchema, objectsKey)
	}
	objects, ok := rawObjects.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a mapping", ErrSchema, objectsKey)
	}

	idx := &Index{entries: make(map[string]Entry, len(objects))}
	for path, raw := range objects {
		entry := Entry{Path: path}
		if fields, ok := raw.(map[string]any); ok {
			entry.Fields = fields
			entry.Hash, _ = fields[hashKey].(string)
			if size, ok := fields[sizeKey].(float64); ok {
				entry.Size = int64(size)
			}
		}
		idx.entries[path] = entry
	}

	return idx, nil
}
