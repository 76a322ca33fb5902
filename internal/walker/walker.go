// Package walker enumerates the regular files beneath a directory tree.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/idelchi/treecrypt/internal/filter"
)

// Entry is a regular file discovered under a root.
type Entry struct {
	// Path is the absolute path of the file.
	Path string
	// Rel is the path relative to the walked root.
	Rel string
}

// WalkError reports the path at which traversal failed.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walking %q: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// ErrNotDirectory is wrapped in a WalkError when the root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Option configures a walk.
type Option func(*options)

type options struct {
	filter *filter.Filter
}

// WithFilter restricts the yielded entries to relative paths accepted by flt.
func WithFilter(flt *filter.Filter) Option {
	return func(o *options) {
		o.filter = flt
	}
}

// Walk returns a lazy sequence of the regular files under root.
//
// Directories are descended into but never yielded. A symbolic link at root is resolved
// first; links below root are neither yielded nor followed. The first error is yielded once, as a *WalkError, and ends the sequence.
// The sequence is single-pass: walk again to restart.
func Walk(root string, opts ...Option) iter.Seq2[Entry, error] {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(yield func(Entry, error) bool) {
		abs, err := filepath.Abs(root)
		if err != nil {
			yield(Entry{}, &WalkError{Path: root, Err: err})

			return
		}

		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			yield(Entry{}, &WalkError{Path: abs, Err: err})

			return
		}

		info, err := os.Stat(resolved)
		if err != nil {
			yield(Entry{}, &WalkError{Path: abs, Err: err})

			return
		}

		if !info.IsDir() {
			yield(Entry{}, &WalkError{Path: abs, Err: ErrNotDirectory})

			return
		}

		stopped := false

		err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return &WalkError{Path: rebase(abs, resolved, path), Err: err}
			}

			if !d.Type().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(resolved, path)
			if err != nil {
				return &WalkError{Path: path, Err: err}
			}

			path = filepath.Join(abs, rel)

			if !cfg.filter.Match(rel) {
				return nil
			}

			if !yield(Entry{Path: path, Rel: rel}, nil) {
				stopped = true

				return filepath.SkipAll
			}

			return nil
		})

		if err != nil && !stopped {
			var walkErr *WalkError
			if !errors.As(err, &walkErr) {
				walkErr = &WalkError{Path: abs, Err: err}
			}

			yield(Entry{}, walkErr)
		}
	}
}

// rebase maps a path below the resolved root back under the root as given.
func rebase(abs, resolved, path string) string {
	rel, err := filepath.Rel(resolved, path)
	if err != nil {
		return path
	}

	return filepath.Join(abs, rel)
}

// Collect materializes a sequence, stopping at the first error.
func Collect(seq iter.Seq2[Entry, error]) ([]Entry, error) {
	var entries []Entry

	for entry, err := range seq {
		if err != nil {
			return entries, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
