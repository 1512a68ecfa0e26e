package lookup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tormodhaugland/twig/internal/match"
	"github.com/tormodhaugland/twig/internal/tree"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "lookup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := tree.Build("/root", []match.Entry{
		{Path: "/root/a/b/file1.txt"},
		{Path: "/root/a/c/file2.txt"},
		{Path: "/root/a/c/file3.txt"},
		{Path: "/root/top.md"},
	})
	require.NoError(t, err)
	return tr
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "lookup.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	assert.Equal(t, dbPath, s.Path())
	require.NoError(t, s.Close())

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	// Reopening runs migrations again without error.
	s, err = Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestRoundTrip(t *testing.T) {
	s := openStore(t)
	tr := sampleTree(t)
	require.NoError(t, s.Replace(tr.Root, tr.Labels))

	for _, n := range tr.Nodes {
		got, err := s.Lookup(n.Label)
		require.NoError(t, err, "token %s", n.Label)
		assert.Equal(t, n.Path, got, "token %s", n.Label)
	}

	root, err := s.Root()
	require.NoError(t, err)
	assert.Equal(t, "/root", root)
}

func TestLookupCaseInsensitiveLabels(t *testing.T) {
	s := openStore(t)
	tr := sampleTree(t)
	require.NoError(t, s.Replace(tr.Root, tr.Labels))

	got, err := s.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "/root/a/b", got)
}

func TestResolveTokensPartialFailure(t *testing.T) {
	s := openStore(t)
	tr := sampleTree(t)
	require.NoError(t, s.Replace(tr.Root, tr.Labels))

	resolved, unresolved, err := s.ResolveTokens([]string{"0", "Z9", "C", "42"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/root/a/b/file1.txt", "/root/a/c"}, resolved)
	assert.Equal(t, []string{"Z9", "42"}, unresolved)
}

func TestLookupUnresolved(t *testing.T) {
	s := openStore(t)
	_, err := s.Lookup("A")
	assert.True(t, errors.Is(err, ErrUnresolved))
}

func TestReplaceOverwrites(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Replace("/root", sampleTree(t).Labels))

	next, err := tree.Build("/other", []match.Entry{{Path: "/other/only.txt"}})
	require.NoError(t, err)
	require.NoError(t, s.Replace(next.Root, next.Labels))

	got, err := s.Lookup("0")
	require.NoError(t, err)
	assert.Equal(t, "/other/only.txt", got)

	_, err = s.Lookup("A")
	assert.True(t, errors.Is(err, ErrUnresolved), "labels from the previous pass must be gone")
	_, err = s.Lookup("1")
	assert.True(t, errors.Is(err, ErrUnresolved))

	root, err := s.Root()
	require.NoError(t, err)
	assert.Equal(t, "/other", root)
}

func TestExpand(t *testing.T) {
	s := openStore(t)
	tr := sampleTree(t)
	require.NoError(t, s.Replace(tr.Root, tr.Labels))

	// A=a, B=a/b, C=a/c; 0=file1, 1=file2, 2=file3, 3=top.md
	files, unresolved, err := s.Expand([]string{"C", "3", "A", "Q"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/root/a/c/file2.txt", "/root/a/c/file3.txt", "/root/top.md"}, files)
	assert.Equal(t, []string{"Q"}, unresolved)
}

func TestItemsAndSearch(t *testing.T) {
	s := openStore(t)
	tr := sampleTree(t)
	require.NoError(t, s.Replace(tr.Root, tr.Labels))

	items, err := s.Items()
	require.NoError(t, err)
	require.Len(t, items, 7)
	assert.Equal(t, Item{Token: "A", Path: "/root/a", IsDir: true}, items[0])
	assert.Equal(t, Item{Token: "3", Path: "/root/top.md"}, items[6])

	hits, err := s.Search("file3", 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "/root/a/c/file3.txt", hits[0].Path)
	assert.Equal(t, "2", hits[0].Token)

	hits, err = s.Search("txt", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestPropertyRoundTrip(t *testing.T) {
	s := openStore(t)
	segment := rapid.SampledFrom([]string{"a", "b", "c", "d.txt"})

	rapid.Check(t, func(rt *rapid.T) {
		paths := rapid.SliceOfN(rapid.SliceOfN(segment, 1, 3), 0, 40).Draw(rt, "paths")
		var entries []match.Entry
		for _, comps := range paths {
			entries = append(entries, match.Entry{Path: filepath.Join(append([]string{"/r"}, comps...)...)})
		}

		tr, err := tree.Build("/r", entries)
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		if err := s.Replace(tr.Root, tr.Labels); err != nil {
			rt.Fatalf("Replace: %v", err)
		}
		for _, n := range tr.Nodes {
			got, err := s.Lookup(n.Label)
			if err != nil {
				rt.Fatalf("Lookup(%s): %v", n.Label, err)
			}
			if got != n.Path {
				rt.Fatalf("Lookup(%s) = %s, want %s", n.Label, got, n.Path)
			}
		}
	})
}
