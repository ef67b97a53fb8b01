package assets

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Filter decides whether an entry with the given logical path is kept.
type Filter interface {
	Keep(path string) bool
	String() string
}

// RegexFilter keeps paths that the expression matches in full.
type RegexFilter struct {
	pattern string
	re      *regexp.Regexp
}

// NewRegexFilter compiles pattern on its own first so that unbalanced
// parentheses cannot close the anchoring group early.
func NewRegexFilter(pattern string) (*RegexFilter, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("%w: regex %q: %w", ErrInvalidPattern, pattern, err)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("%w: regex %q: %w", ErrInvalidPattern, pattern, err)
	}
	return &RegexFilter{pattern: pattern, re: re}, nil
}

func (f *RegexFilter) Keep(path string) bool {
	return f.re.MatchString(path)
}

func (f *RegexFilter) String() string {
	return "regex:" + f.pattern
}

// GlobFilter keeps paths matching a doublestar pattern. Without a leading `/`
// the pattern may match any trailing run of whole segments, so `*.ogg` keeps
// `sound/a.ogg`. A leading `/` anchors the pattern at the start of the path.
type GlobFilter struct {
	pattern  string
	anchored bool
}

// NewGlobFilter validates pattern with doublestar. Patterns may start with `/`
// to anchor at the root of the logical path.
func NewGlobFilter(pattern string) (*GlobFilter, error) {
	anchored := strings.HasPrefix(pattern, "/")
	p := strings.TrimPrefix(pattern, "/")
	if p == "" || !doublestar.ValidatePattern(p) {
		return nil, fmt.Errorf("%w: glob %q", ErrInvalidPattern, pattern)
	}
	return &GlobFilter{pattern: p, anchored: anchored}, nil
}

func (f *GlobFilter) Keep(path string) bool {
	for candidate := path; ; {
		if doublestar.MatchUnvalidated(f.pattern, candidate) {
			return true
		}
		if f.anchored {
			return false
		}
		i := strings.IndexByte(candidate, '/')
		if i < 0 {
			return false
		}
		candidate = candidate[i+1:]
	}
}

func (f *GlobFilter) String() string {
	if f.anchored {
		return "glob:/" + f.pattern
	}
	return "glob:" + f.pattern
}

// ExcludeFilter drops paths matched by gitignore-style rules.
type ExcludeFilter struct {
	lines  []string
	ignore *gitignore.GitIgnore
}

// NewExcludeFilter compiles gitignore-style lines; blank lines and `#`
// comments are dropped.
func NewExcludeFilter(lines ...string) *ExcludeFilter {
	var rules []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		rules = append(rules, l)
	}
	return &ExcludeFilter{lines: rules, ignore: gitignore.CompileIgnoreLines(rules...)}
}

// ReadExcludeFile returns the lines of a gitignore-style rules file.
func ReadExcludeFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("exclude file %s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exclude file %s: %w", path, err)
	}
	return lines, nil
}

func (f *ExcludeFilter) Keep(path string) bool {
	if len(f.lines) == 0 {
		return true
	}
	return !f.ignore.MatchesPath(path)
}

func (f *ExcludeFilter) String() string {
	return "exclude:" + strings.Join(f.lines, ",")
}

// Select returns the entries of idx kept by every filter, sorted by path.
// An empty result is logged as a warning, not returned as an error.
func Select(idx *Index, filters []Filter, logger *slog.Logger) []Entry {
	all := idx.Entries()
	if len(filters) == 0 {
		if len(all) == 0 {
			logger.Warn("Zero items match the filter.")
		}
		return all
	}

	selected := make([]Entry, 0, len(all))
	for _, e := range all {
		if keep(e.Path, filters, logger) {
			selected = append(selected, e)
		}
	}

	if len(selected) == 0 {
		logger.Warn("Zero items match the filter.")
	}
	return selected
}

func keep(path string, filters []Filter, logger *slog.Logger) bool {
	for _, f := range filters {
		if !f.Keep(path) {
			logger.Debug("filtered out", "path", path, "filter", f.String())
			return false
		}
	}
	logger.Debug("matched", "path", path)
	return true
}
