package tree

import (
	"errors"
	"fmt"
)

// ErrNesting means the node sequence broke the ordering invariant. It is a
// programming error upstream, never a user error.
var ErrNesting = errors.New("tree nesting invariant violated")

// Builder receives the open/close sequence of an assembly pass.
type Builder interface {
	BeginChild(n *Node)
	AddLeaf(n *Node)
	EndChild()
}

// Assemble drives b over nodes, keeping a stack of open directory scopes and
// closing scopes until the top is the node's parent. Every scope left open
// is closed at the end, so opens and closes balance.
//
// The close count of each step is also checked against the depth-delta rule
// (close the depth difference, plus one when the previous node was a
// directory whose scope is not the new node's parent). A disagreement is
// reported as ErrNesting.
func Assemble(nodes []*Node, b Builder) error {
	var stack []string
	var prev *Node

	for i, n := range nodes {
		if n.Depth() == 0 {
			return fmt.Errorf("%w: node %d has no components", ErrNesting, i)
		}
		parent := n.ParentKey()

		closes := 0
		for len(stack) > 0 && stack[len(stack)-1] != parent {
			stack = stack[:len(stack)-1]
			b.EndChild()
			closes++
		}
		if parent != "" && len(stack) == 0 {
			return fmt.Errorf("%w: %q appears before its parent %q", ErrNesting, n.Key(), parent)
		}
		if len(stack) != n.Depth()-1 {
			return fmt.Errorf("%w: %q at depth %d under %d open scopes", ErrNesting, n.Key(), n.Depth(), len(stack))
		}

		if want := expectedCloses(prev, n); closes != want {
			return fmt.Errorf("%w: %q closed %d scopes, depth rule expects %d", ErrNesting, n.Key(), closes, want)
		}

		if n.Kind == Directory {
			b.BeginChild(n)
			stack = append(stack, n.Key())
		} else {
			b.AddLeaf(n)
		}
		prev = n
	}

	for range stack {
		b.EndChild()
	}
	return nil
}

func expectedCloses(prev, n *Node) int {
	if prev == nil {
		return 0
	}
	cur, next := prev.Depth(), n.Depth()
	switch {
	case next < cur:
		c := cur - next
		if prev.Kind == Directory && prev.ParentKey() != n.ParentKey() {
			c++
		}
		return c
	case next == cur:
		if prev.Kind == Directory {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// counter is a Builder that only tallies operations.
type counter struct {
	opens, closes, leaves int
}

func (c *counter) BeginChild(*Node) { c.opens++ }
func (c *counter) AddLeaf(*Node)    { c.leaves++ }
func (c *counter) EndChild()        { c.closes++ }
