package tree

import (
	"sort"

	"github.com/tormodhaugland/twig/internal/match"
)

type keyed struct {
	comps []string
	entry match.Entry
}

// Flatten converts matched entries into nodes in render order. Entries are
// sorted component-wise; every ancestor directory is synthesized once,
// however many descendants imply it. An entry equal to root yields nothing.
func Flatten(root string, entries []match.Entry) []*Node {
	items := make([]keyed, 0, len(entries))
	for _, e := range entries {
		comps, ok := components(root, e.Path)
		if !ok || len(comps) == 0 {
			continue
		}
		items = append(items, keyed{comps: comps, entry: e})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if c := compareComponents(items[i].comps, items[j].comps); c != 0 {
			return c < 0
		}
		// A leaf sharing a directory's path goes first, so the directory
		// stays adjacent to its children.
		return !items[i].entry.IsDir && items[j].entry.IsDir
	})

	seenDirs := make(map[string]bool)
	seenLeaves := make(map[string]bool)
	nodes := make([]*Node, 0, len(items))

	for _, it := range items {
		for i := 1; i < len(it.comps); i++ {
			prefix := it.comps[:i]
			key := joinKey(prefix)
			if seenDirs[key] {
				continue
			}
			seenDirs[key] = true
			nodes = append(nodes, &Node{
				Components: cloneComps(prefix),
				Kind:       Directory,
				Path:       joinPath(root, prefix),
			})
		}

		key := joinKey(it.comps)
		n := &Node{
			Components: cloneComps(it.comps),
			Path:       joinPath(root, it.comps),
			Span:       it.entry.Span,
			IsSymlink:  it.entry.IsSymlink,
			ModTime:    it.entry.ModTime,
		}
		if it.entry.IsDir {
			if seenDirs[key] {
				continue
			}
			seenDirs[key] = true
			n.Kind = Directory
		} else {
			if seenLeaves[key] {
				continue
			}
			seenLeaves[key] = true
			n.Kind = Leaf
			n.Marker = it.entry.Marker
			n.Size = it.entry.Size
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func joinKey(comps []string) string {
	return joinPath("", comps)
}

func cloneComps(c []string) []string {
	out := make([]string, len(c))
	copy(out, c)
	return out
}
