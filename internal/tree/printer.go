package tree

import (
	"strings"

	"github.com/xlab/treeprint"
)

// Decorator renders the text of one node line, without the label.
type Decorator func(n *Node) string

// PlainName is the Decorator used when nothing else is asked for.
func PlainName(n *Node) string {
	name := n.DisplayName()
	if n.Kind == Directory {
		name += "/"
	}
	if n.Marker != "" {
		name += " [" + string(n.Marker) + "]"
	}
	return name
}

// Printer is a Builder that lays the tree out with treeprint. Labels are
// printed as node metadata.
type Printer struct {
	tree     treeprint.Tree
	stack    []treeprint.Tree
	decorate Decorator
	labels   bool
}

func NewPrinter(rootName string, labels bool, decorate Decorator) *Printer {
	if decorate == nil {
		decorate = PlainName
	}
	t := treeprint.NewWithRoot(Escape(rootName))
	return &Printer{
		tree:     t,
		stack:    []treeprint.Tree{t},
		decorate: decorate,
		labels:   labels,
	}
}

func (p *Printer) top() treeprint.Tree {
	return p.stack[len(p.stack)-1]
}

func (p *Printer) BeginChild(n *Node) {
	var br treeprint.Tree
	if p.labels && n.Label != "" {
		br = p.top().AddMetaBranch(n.Label, p.decorate(n))
	} else {
		br = p.top().AddBranch(p.decorate(n))
	}
	p.stack = append(p.stack, br)
}

func (p *Printer) AddLeaf(n *Node) {
	if p.labels && n.Label != "" {
		p.top().AddMetaNode(n.Label, p.decorate(n))
		return
	}
	p.top().AddNode(p.decorate(n))
}

func (p *Printer) EndChild() {
	if len(p.stack) > 1 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *Printer) String() string {
	return p.tree.String()
}

// Lines splits the printed tree. Line 0 is the root; line i+1 is node i.
func (p *Printer) Lines() []string {
	return strings.Split(strings.TrimRight(p.String(), "\n"), "\n")
}
