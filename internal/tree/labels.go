package tree

import (
	"path"
	"path/filepath"
	"strconv"
)

// LabeledPath is a directory reachable by its letter label.
type LabeledPath struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// NumberedPath is a leaf reachable by its number. Parent is the path of the
// enclosing directory, used to expand a directory label into its files.
type NumberedPath struct {
	Number int    `json:"number"`
	Path   string `json:"path"`
	Parent string `json:"parent"`
}

// Labels is the token map produced by one pass, in render order.
type Labels struct {
	Dirs  []LabeledPath  `json:"labeled"`
	Files []NumberedPath `json:"numbered"`
}

// DirLabel returns the label of the i-th directory: A..Z, then A1..Z1,
// A2..Z2 and so on.
func DirLabel(i int) string {
	letter := string(rune('A' + i%26))
	if cycle := i / 26; cycle > 0 {
		return letter + strconv.Itoa(cycle)
	}
	return letter
}

// Allocate assigns labels in render order and returns the token map.
// Directories get letters, leaves get numbers from 0.
func Allocate(root string, nodes []*Node) Labels {
	var labels Labels
	dirs, files := 0, 0

	for _, n := range nodes {
		if n.Kind == Directory {
			n.Label = DirLabel(dirs)
			labels.Dirs = append(labels.Dirs, LabeledPath{Label: n.Label, Path: n.Path})
			dirs++
			continue
		}
		n.Label = strconv.Itoa(files)
		labels.Files = append(labels.Files, NumberedPath{
			Number: files,
			Path:   n.Path,
			Parent: parentPath(root, n),
		})
		files++
	}
	return labels
}

func parentPath(root string, n *Node) string {
	if root == "" {
		dir := path.Dir(n.Path)
		if dir == "." {
			return ""
		}
		return dir
	}
	return filepath.Dir(n.Path)
}
