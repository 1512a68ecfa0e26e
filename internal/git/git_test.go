package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("git not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_SYSTEM=/dev/null",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}
	runGit(t, dir, "init", "-q", "-b", "main")
	writeFile(t, filepath.Join(dir, "tracked.txt"), "one\n")
	writeFile(t, filepath.Join(dir, "gone.txt"), "bye\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "init")
	return dir
}

func TestParseStatus(t *testing.T) {
	out := []byte(" M src/a.go\x00?? new.txt\x00A  added.go\x00D  gone.go\x00R  to.go\x00from.go\x00UU both.go\x00 T mode.sh\x00!! ignored.o\x00")
	got := ParseStatus("/repo", out)

	want := map[string]Marker{
		"/repo/src/a.go": Modified,
		"/repo/new.txt":  Untracked,
		"/repo/added.go": Added,
		"/repo/gone.go":  Deleted,
		"/repo/to.go":    Renamed,
		"/repo/both.go":  Conflicted,
		"/repo/mode.sh":  Modified,
	}
	assert.Equal(t, want, got)
}

func TestParseStatusEmpty(t *testing.T) {
	assert.Empty(t, ParseStatus("/repo", nil))
	assert.Empty(t, ParseStatus("/repo", []byte("\x00")))
}

func TestMarkerForConflicts(t *testing.T) {
	for _, code := range []string{"DD", "AU", "UD", "UA", "DU", "AA", "UU"} {
		assert.Equal(t, Conflicted, markerFor(code), code)
	}
	assert.Equal(t, Modified, markerFor("MM"))
	assert.Equal(t, Deleted, markerFor(" D"))
	assert.Equal(t, Marker(""), markerFor("!!"))
}

func TestParseBranches(t *testing.T) {
	out := " \x00refs/heads/feature/login\n*\x00refs/heads/main\n \x00refs/remotes/origin/HEAD\n \x00refs/remotes/origin/main\n \x00refs/tags/v1\n"
	got := parseBranches(out)

	assert.Equal(t, []Branch{
		{Name: "feature/login"},
		{Name: "main", Current: true},
		{Name: "remotes/origin/main"},
	}, got)
}

func TestStatusMarkers(t *testing.T) {
	requireGit(t)
	dir := initRepo(t)

	writeFile(t, filepath.Join(dir, "tracked.txt"), "two\n")
	writeFile(t, filepath.Join(dir, "sub", "untracked.txt"), "x\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.txt")))

	markers, err := StatusMarkers(filepath.Join(dir, "sub"))
	require.NoError(t, err)

	assert.Equal(t, Modified, markers[filepath.Join(dir, "tracked.txt")])
	assert.Equal(t, Untracked, markers[filepath.Join(dir, "sub", "untracked.txt")])
	assert.Equal(t, Deleted, markers[filepath.Join(dir, "gone.txt")])
	assert.Len(t, markers, 3)
}

func TestStatusMarkersNotRepo(t *testing.T) {
	requireGit(t)
	_, err := StatusMarkers(t.TempDir())
	assert.True(t, errors.Is(err, ErrNotRepo), "got %v", err)
}

func TestBranchesAndStage(t *testing.T) {
	requireGit(t)
	dir := initRepo(t)
	runGit(t, dir, "branch", "feature/x")

	branches, err := Branches(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []Branch{{Name: "feature/x"}, {Name: "main", Current: true}}, branches)

	writeFile(t, filepath.Join(dir, "new.txt"), "x\n")
	require.NoError(t, Stage(dir, filepath.Join(dir, "new.txt")))

	markers, err := StatusMarkers(dir)
	require.NoError(t, err)
	assert.Equal(t, Added, markers[filepath.Join(dir, "new.txt")])

	assert.NoError(t, Stage(dir))
}
