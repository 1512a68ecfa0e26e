package tui

import (
	"path/filepath"

	"github.com/tormodhaugland/twig/internal/tree"
)

// treeScroller tracks the selected node and the scroll window over the
// rendered tree.
type treeScroller struct {
	nodes        []*tree.Node
	selected     int
	scrollOffset int
	height       int // visible lines for scrolling
}

func newTreeScroller(nodes []*tree.Node, visibleHeight int) *treeScroller {
	return &treeScroller{
		nodes:  nodes,
		height: visibleHeight,
	}
}

// updateTree swaps in a new node list and keeps the selection in range.
func (s *treeScroller) updateTree(nodes []*tree.Node) {
	s.nodes = nodes
	if s.selected >= len(s.nodes) {
		s.selected = len(s.nodes) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	s.ensureVisible()
}

// selectByPath selects the node at targetPath. If it is gone, the first
// sibling in the same directory is selected, then the nearest ancestor.
func (s *treeScroller) selectByPath(targetPath string) bool {
	if targetPath == "" || len(s.nodes) == 0 {
		return false
	}

	for i, node := range s.nodes {
		if node.Path == targetPath {
			s.selected = i
			s.ensureVisible()
			return true
		}
	}

	parentDir := filepath.Dir(targetPath)
	if parentDir != "" && parentDir != "/" && parentDir != "." {
		for i, node := range s.nodes {
			if filepath.Dir(node.Path) == parentDir {
				s.selected = i
				s.ensureVisible()
				return true
			}
		}
	}

	for targetPath != "" && targetPath != "/" && targetPath != "." {
		targetPath = filepath.Dir(targetPath)
		for i, node := range s.nodes {
			if node.Path == targetPath {
				s.selected = i
				s.ensureVisible()
				return true
			}
		}
	}

	return false
}

func (s *treeScroller) setHeight(height int) {
	s.height = height
	s.ensureVisible()
}

func (s *treeScroller) moveUp() {
	if s.selected > 0 {
		s.selected--
		s.ensureVisible()
	}
}

func (s *treeScroller) moveDown() {
	if s.selected < len(s.nodes)-1 {
		s.selected++
		s.ensureVisible()
	}
}

func (s *treeScroller) moveToTop() {
	s.selected = 0
	s.scrollOffset = 0
}

func (s *treeScroller) moveToBottom() {
	if len(s.nodes) > 0 {
		s.selected = len(s.nodes) - 1
		s.ensureVisible()
	}
}

func (s *treeScroller) ensureVisible() {
	if s.height <= 0 {
		return
	}

	if s.selected < s.scrollOffset {
		s.scrollOffset = s.selected
	}

	if s.selected >= s.scrollOffset+s.height {
		s.scrollOffset = s.selected - s.height + 1
	}
}

// visibleRange returns the start and end node indices in view.
func (s *treeScroller) visibleRange() (start, end int) {
	start = s.scrollOffset
	end = s.scrollOffset + s.height
	if end > len(s.nodes) {
		end = len(s.nodes)
	}
	return start, end
}

func (s *treeScroller) selectedNode() *tree.Node {
	if s.selected >= 0 && s.selected < len(s.nodes) {
		return s.nodes[s.selected]
	}
	return nil
}
