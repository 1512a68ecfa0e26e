package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/git"
)

func sampleEntries() []fs.Entry {
	return []fs.Entry{
		{Path: "/root/a", IsDir: true},
		{Path: "/root/a/b", IsDir: true},
		{Path: "/root/a/b/file1.txt", Size: 3},
		{Path: "/root/a/c", IsDir: true},
		{Path: "/root/a/c/file2.txt", Size: 4},
	}
}

func TestMatchNoPatternPassesEverything(t *testing.T) {
	m, err := New("", nil, false)
	require.NoError(t, err)
	assert.False(t, m.Active())

	got := m.All(sampleEntries())
	require.Len(t, got, 5)
	for _, e := range got {
		assert.Nil(t, e.Span)
		assert.Empty(t, e.Marker)
	}
}

func TestMatchPatternSpan(t *testing.T) {
	m, err := New("file1", nil, false)
	require.NoError(t, err)

	got := m.All(sampleEntries())
	require.Len(t, got, 1)
	assert.Equal(t, "/root/a/b/file1.txt", got[0].Path)
	assert.Equal(t, &Span{Start: 0, End: 5}, got[0].Span)
	assert.Equal(t, "file1.txt", got[0].Name())
}

func TestMatchSpanIsOnDisplayName(t *testing.T) {
	m, err := New(`\.txt$`, nil, false)
	require.NoError(t, err)

	e, ok := m.Match(fs.Entry{Path: "/root/txt/notes.txt"})
	require.True(t, ok)
	assert.Equal(t, &Span{Start: 5, End: 9}, e.Span)

	_, ok = m.Match(fs.Entry{Path: "/root/x.txt/readme.md"})
	assert.False(t, ok)
}

func TestMatchInvalidPattern(t *testing.T) {
	_, err := New("(unclosed", nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestMatchMarkersOnLeavesOnly(t *testing.T) {
	markers := map[string]git.Marker{
		"/root/a/b/file1.txt": git.Modified,
		"/root/a":             git.Untracked,
	}
	m, err := New("", markers, false)
	require.NoError(t, err)

	got := m.All(sampleEntries())
	byPath := map[string]git.Marker{}
	for _, e := range got {
		byPath[e.Path] = e.Marker
	}
	assert.Equal(t, git.Modified, byPath["/root/a/b/file1.txt"])
	assert.Empty(t, byPath["/root/a"])
	assert.Empty(t, byPath["/root/a/c/file2.txt"])
}

func TestMatchMarkerUsesCleanPath(t *testing.T) {
	m, err := New("", map[string]git.Marker{"/root/a/x.go": git.Added}, false)
	require.NoError(t, err)
	assert.Equal(t, git.Added, m.Marker("/root/a/./b/../x.go"))
}

func TestMatchDirsOnly(t *testing.T) {
	m, err := New("", nil, true)
	require.NoError(t, err)
	got := m.All(sampleEntries())
	require.Len(t, got, 3)
	for _, e := range got {
		assert.True(t, e.IsDir)
	}

	m, err = New("^c$", nil, true)
	require.NoError(t, err)
	got = m.All(sampleEntries())
	require.Len(t, got, 1)
	assert.Equal(t, "/root/a/c", got[0].Path)
	assert.Equal(t, &Span{Start: 0, End: 1}, got[0].Span)
}
