package assets

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// ListFormat selects how List renders entries.
type ListFormat string

const (
	FormatText ListFormat = "text"
	FormatJSON ListFormat = "json"
	FormatYAML ListFormat = "yaml"
)

// ParseListFormat accepts text, json or yaml in any case; empty means text.
func ParseListFormat(s string) (ListFormat, error) {
	switch f := ListFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown list format %q (want text, json or yaml)", s)
	}
}

type listItem struct {
	Path string `json:"path" yaml:"path"`
	Hash string `json:"hash" yaml:"hash"`
	Size int64  `json:"size" yaml:"size"`
}

// List writes entries sorted by logical path. The text format is one
// `<hash>: <path>` line per entry. Entries without a hash are skipped with a
// warning, as the extractor does.
func List(w io.Writer, entries []Entry, format ListFormat, logger *slog.Logger) error {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Hash == "" {
			logger.Warn("skipping malformed entry", "path", e.Path, "error", fmt.Errorf("%w: %s has no hash", ErrMalformedEntry, e.Path))
			continue
		}
		sorted = append(sorted, e)
	}
	sortEntries(sorted)

	switch format {
	case FormatText, "":
		for _, e := range sorted {
			if _, err := fmt.Fprintf(w, "%s: %s\n", e.Hash, e.Path); err != nil {
				return err
			}
		}
		return nil

	case FormatJSON:
		data, err := jsonMarshal(toListItems(sorted), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toListItems(sorted)); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown list format %q", format)
	}
}

func toListItems(entries []Entry) []listItem {
	items := make([]listItem, len(entries))
	for i, e := range entries {
		items[i] = listItem{Path: e.Path, Hash: e.Hash, Size: e.Size}
	}
	return items
}
