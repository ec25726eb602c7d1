// Package siblings lists the containers that share a directory with an opened
// one, so a preview can step forward and backward through them.
package siblings

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"datpeek/internal/errors"

	"github.com/gobwas/glob"
)

// Lister reads the names of the regular files in a directory, in the order
// the directory yields them.
type Lister interface {
	ListDirectory(ctx context.Context, dir string) ([]string, error)
}

// Index is the memoized sibling listing of one directory.
type Index struct {
	dir     string
	matcher glob.Glob
	lister  Lister
	sorted  bool

	mu      sync.Mutex
	loaded  bool
	listing []string
}

// Option configures an Index.
type Option func(*Index)

// Sorted orders the listing by file name instead of directory order.
func Sorted(sorted bool) Option {
	return func(i *Index) { i.sorted = sorted }
}

// New creates an index for dir that keeps names ending in ext.
func New(dir, ext string, lister Lister, opts ...Option) (*Index, error) {
	matcher, err := glob.Compile("*" + glob.QuoteMeta(ext))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid container extension %q", ext)
	}
	idx := &Index{
		dir:     filepath.Clean(dir),
		matcher: matcher,
		lister:  lister,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Dir returns the indexed directory.
func (i *Index) Dir() string {
	return i.dir
}

// List returns the sibling paths. The directory is read once; later calls
// return the same listing even if the directory changed since.
func (i *Index) List(ctx context.Context) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.loaded {
		return i.listing, nil
	}

	names, err := i.lister.ListDirectory(ctx, i.dir)
	if err != nil {
		return nil, err
	}

	listing := make([]string, 0, len(names))
	for _, name := range names {
		if i.matcher.Match(name) {
			listing = append(listing, filepath.Join(i.dir, name))
		}
	}
	if i.sorted {
		sort.Strings(listing)
	}

	i.listing = listing
	i.loaded = true
	return listing, nil
}

// IndexOf returns the position of path in listing, or -1.
func IndexOf(path string, listing []string) int {
	path = filepath.Clean(path)
	for n, candidate := range listing {
		if filepath.Clean(candidate) == path {
			return n
		}
	}
	return -1
}

// Step returns the sibling delta positions away from path. ok is false when
// path is not listed or the step runs off either end.
func Step(path string, listing []string, delta int) (string, bool) {
	current := IndexOf(path, listing)
	if current < 0 {
		return "", false
	}
	target := current + delta
	if target < 0 || target >= len(listing) {
		return "", false
	}
	return listing[target], true
}
