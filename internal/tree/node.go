// Package tree turns a flat set of matched paths into an ordered, nested,
// labeled tree and renders it.
package tree

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/tormodhaugland/twig/internal/git"
	"github.com/tormodhaugland/twig/internal/match"
)

type Kind int

const (
	Directory Kind = iota
	Leaf
)

func (k Kind) String() string {
	if k == Directory {
		return "dir"
	}
	return "leaf"
}

// Node is one line of the assembled tree.
type Node struct {
	// Components are the path segments from the traversal root to this node.
	Components []string
	Kind       Kind
	// Path is the absolute path, or the branch name when the tree has no
	// filesystem root.
	Path string

	Marker git.Marker
	Span   *match.Span
	Label  string

	IsSymlink bool
	Size      int64
	ModTime   time.Time
}

func (n *Node) Depth() int {
	return len(n.Components)
}

func (n *Node) Name() string {
	return n.Components[len(n.Components)-1]
}

// DisplayName is Name with control characters escaped, so a node always
// prints on a single line.
func (n *Node) DisplayName() string {
	return Escape(n.Name())
}

// Escape rewrites control characters in s as backslash sequences.
func Escape(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case unicode.IsControl(r):
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Key is the slash-joined relative path; directories are unique by key.
func (n *Node) Key() string {
	return strings.Join(n.Components, "/")
}

// ParentKey is the key of the enclosing directory, "" at the top level.
func (n *Node) ParentKey() string {
	return strings.Join(n.Components[:len(n.Components)-1], "/")
}

func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

// components splits p into segments relative to root. An empty root means p
// is already relative (branch names). ok is false for paths outside root.
func components(root, p string) ([]string, bool) {
	rel := filepath.ToSlash(p)
	if root != "" {
		r, err := filepath.Rel(root, p)
		if err != nil {
			return nil, false
		}
		rel = filepath.ToSlash(r)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return nil, false
		}
	}

	var out []string
	for _, c := range strings.Split(rel, "/") {
		if c == "" || c == "." {
			continue
		}
		out = append(out, c)
	}
	return out, true
}

// compareComponents orders paths segment by segment, so a directory's
// subtree stays contiguous: "x" < "x/y.txt" < "x.txt".
func compareComponents(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func joinPath(root string, comps []string) string {
	if root == "" {
		return strings.Join(comps, "/")
	}
	return filepath.Join(append([]string{root}, comps...)...)
}
