// Package filter selects files by their path relative to the walked root.
//
// Patterns use doublestar semantics: * stays within one path segment, ** spans any number of
// segments. A pattern without a slash matches the file name at any depth.
package filter

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects files based on include/exclude patterns.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes []string
	excludes []string
}

// New validates and normalizes include/exclude patterns into a reusable filter.
func New(includes, excludes []string) (*Filter, error) {
	inc, err := compile(includes)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := compile(excludes)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc}, nil
}

// Match reports whether the relative path should be processed.
// A nil filter matches everything.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return true
	}

	clean := filepath.ToSlash(filepath.Clean(rel))

	included := len(f.includes) == 0 || matchAny(f.includes, clean)

	return included && !matchAny(f.excludes, clean)
}

// Empty reports whether the filter has no patterns at all.
func (f *Filter) Empty() bool {
	return f == nil || len(f.includes)+len(f.excludes) == 0
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		target := rel
		if !strings.Contains(pattern, "/") {
			target = path.Base(rel)
		}

		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}

	return false
}

// compile strips leading "./" and rejects malformed patterns.
func compile(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))

	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "./")
		if p == "" {
			continue
		}

		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}

		out = append(out, p)
	}

	return out, nil
}
