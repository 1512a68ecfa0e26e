package tree

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/match"
)

func fsEntry(p string) fs.Entry {
	return fs.Entry{Path: p}
}

func genEntries() *rapid.Generator[[]match.Entry] {
	segment := rapid.SampledFrom([]string{"a", "b", "c", "a.txt", "b-c"})
	entry := rapid.Custom(func(t *rapid.T) match.Entry {
		comps := rapid.SliceOfN(segment, 1, 4).Draw(t, "components")
		return match.Entry{
			Path:  "/root/" + strings.Join(comps, "/"),
			IsDir: rapid.Bool().Draw(t, "dir"),
		}
	})
	return rapid.SliceOfN(entry, 0, 25)
}

func TestPropertyDedup(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries().Draw(t, "entries")
		tr, err := Build("/root", entries)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		dirs := map[string]int{}
		for _, n := range tr.Nodes {
			if n.Kind == Directory {
				dirs[n.Key()]++
			}
		}
		for key, count := range dirs {
			if count != 1 {
				t.Fatalf("directory %q appears %d times", key, count)
			}
		}
		for _, n := range tr.Nodes {
			for i := 1; i < n.Depth(); i++ {
				anc := strings.Join(n.Components[:i], "/")
				if dirs[anc] != 1 {
					t.Fatalf("ancestor %q of %q missing", anc, n.Key())
				}
			}
		}
	})
}

func TestPropertyOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries().Draw(t, "entries")
		tr, err := Build("/root", entries)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		firstDir := map[string]int{}
		for i, n := range tr.Nodes {
			if n.Kind == Directory {
				firstDir[n.Key()] = i
			}
		}
		for i, n := range tr.Nodes {
			for d := 1; d < n.Depth(); d++ {
				anc := strings.Join(n.Components[:d], "/")
				if firstDir[anc] >= i {
					t.Fatalf("ancestor %q at %d does not precede %q at %d", anc, firstDir[anc], n.Key(), i)
				}
			}
		}
	})
}

func TestPropertyBalance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries().Draw(t, "entries")
		nodes := Flatten("/root", entries)

		var c counter
		if err := Assemble(nodes, &c); err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if c.opens != c.closes {
			t.Fatalf("opens %d != closes %d", c.opens, c.closes)
		}
		if c.opens+c.leaves != len(nodes) {
			t.Fatalf("visited %d of %d nodes", c.opens+c.leaves, len(nodes))
		}
	})
}

func TestPropertyLabelMonotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries().Draw(t, "entries")
		tr, err := Build("/root", entries)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		dirs, files := 0, 0
		for _, n := range tr.Nodes {
			if n.Kind == Directory {
				if n.Label != DirLabel(dirs) {
					t.Fatalf("directory %d labeled %q", dirs, n.Label)
				}
				dirs++
				continue
			}
			if n.Label != strconv.Itoa(files) {
				t.Fatalf("leaf %d labeled %q", files, n.Label)
			}
			files++
		}
		if len(tr.Labels.Dirs) != dirs || len(tr.Labels.Files) != files {
			t.Fatalf("label maps out of sync with nodes")
		}
	})
}

func TestPropertyIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries().Draw(t, "entries")
		shuffled := rapid.Permutation(entries).Draw(t, "shuffled")

		a, err := Build("/root", entries)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		b, err := Build("/root", shuffled)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		sa, sb := shapes(a.Nodes), shapes(b.Nodes)
		if len(sa) != len(sb) {
			t.Fatalf("node counts differ: %d vs %d", len(sa), len(sb))
		}
		for i := range sa {
			if sa[i] != sb[i] {
				t.Fatalf("node %d differs: %+v vs %+v", i, sa[i], sb[i])
			}
		}
		if a.String() != b.String() {
			t.Fatalf("rendered trees differ")
		}
	})
}
