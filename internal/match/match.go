// Package match filters walker entries against the active pattern and
// attaches status markers.
package match

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/git"
)

var ErrInvalidPattern = errors.New("invalid pattern")

// Span is a half-open byte range into an entry's display name.
type Span struct {
	Start int
	End   int
}

// Entry is a walker entry that survived matching. Marker and Span stay
// empty when no marker or pattern applies.
type Entry struct {
	Path      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	ModTime   time.Time
	Marker    git.Marker
	Span      *Span
}

// Name is the display name: the final path component.
func (e Entry) Name() string {
	return path.Base(filepath.ToSlash(e.Path))
}

type Matcher struct {
	re       *regexp.Regexp
	markers  map[string]git.Marker
	dirsOnly bool
}

// New compiles pattern. An empty pattern matches everything. markers may be
// nil.
func New(pattern string, markers map[string]git.Marker, dirsOnly bool) (*Matcher, error) {
	m := &Matcher{markers: markers, dirsOnly: dirsOnly}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
		m.re = re
	}
	return m, nil
}

// Active reports whether a pattern is in effect.
func (m *Matcher) Active() bool {
	return m.re != nil
}

// Match returns the matched entry and true, or false when e is excluded.
//
// Without a pattern every entry passes. With one, only leaves are tested and
// directories are dropped, since the tree synthesizes the ancestors of each
// matched leaf. In dirs-only mode files are always dropped and the pattern
// is tested against directory names instead.
func (m *Matcher) Match(e fs.Entry) (Entry, bool) {
	out := Entry{
		Path:      e.Path,
		IsDir:     e.IsDir,
		IsSymlink: e.IsSymlink,
		Size:      e.Size,
		ModTime:   e.ModTime,
	}

	if m.dirsOnly && !e.IsDir {
		return Entry{}, false
	}

	if m.re != nil {
		if e.IsDir != m.dirsOnly {
			return Entry{}, false
		}
		loc := m.re.FindStringIndex(out.Name())
		if loc == nil {
			return Entry{}, false
		}
		out.Span = &Span{Start: loc[0], End: loc[1]}
	}

	if !e.IsDir {
		out.Marker = m.Marker(e.Path)
	}
	return out, true
}

// Marker looks up the marker for a path. A missing marker is not an error.
func (m *Matcher) Marker(p string) git.Marker {
	if m.markers == nil {
		return ""
	}
	return m.markers[filepath.Clean(p)]
}

// All runs Match over entries, keeping the ones that pass.
func (m *Matcher) All(entries []fs.Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if me, ok := m.Match(e); ok {
			out = append(out, me)
		}
	}
	return out
}
