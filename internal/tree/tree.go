package tree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tormodhaugland/twig/internal/match"
)

// Tree is the result of one assembly pass.
type Tree struct {
	// Root is the traversal root; empty for branch trees.
	Root   string
	Nodes  []*Node
	Labels Labels
}

// Build flattens entries, checks the nesting invariants and allocates
// labels. Build is deterministic: equal inputs give equal trees.
func Build(root string, entries []match.Entry) (*Tree, error) {
	nodes := Flatten(root, entries)

	var c counter
	if err := Assemble(nodes, &c); err != nil {
		return nil, err
	}
	if c.opens != c.closes {
		return nil, fmt.Errorf("%w: %d opens, %d closes", ErrNesting, c.opens, c.closes)
	}

	return &Tree{
		Root:   root,
		Nodes:  nodes,
		Labels: Allocate(root, nodes),
	}, nil
}

// RootName is the label printed on the tree's first line.
func (t *Tree) RootName() string {
	if t.Root == "" {
		return "."
	}
	return t.Root
}

// Render prints the tree through a fresh Printer.
func (t *Tree) Render(labels bool, decorate Decorator) (*Printer, error) {
	p := NewPrinter(t.RootName(), labels, decorate)
	if err := Assemble(t.Nodes, p); err != nil {
		return nil, err
	}
	return p, nil
}

// String renders with plain names and labels.
func (t *Tree) String() string {
	p, err := t.Render(true, nil)
	if err != nil {
		return ""
	}
	return p.String()
}

// Export writes content to path through a temporary file and a rename.
func Export(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
