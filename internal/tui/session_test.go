package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/pass"
	"github.com/tormodhaugland/twig/internal/tree"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// settle runs pending passes until the session stops reloading.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for m.Popup().Kind == PopupReloading && cmd != nil {
		msg := cmd()
		done, ok := msg.(passDoneMsg)
		require.True(t, ok, "expected a pass result, got %T", msg)
		m, cmd = update(t, m, done)
	}
	return m
}

func press(t *testing.T, m Model, presses ...string) Model {
	t.Helper()
	for _, k := range presses {
		var cmd tea.Cmd
		m, cmd = update(t, m, keyMsg(k))
		m = settle(t, m, cmd)
	}
	return m
}

type testSession struct {
	root   string
	copied string
	cfg    *config.Config
}

func testFilters() config.Filters {
	f := config.DefaultFilters()
	f.GitMarkers = false
	f.Plain = true
	return f
}

func newTestSession(t *testing.T, files map[string]string) (*testSession, Model) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeFiles(t, root, files)

	ts := &testSession{root: root, cfg: config.DefaultConfig()}
	ts.cfg.CacheRoot = t.TempDir()

	m := New(context.Background(), Options{
		Config:   ts.cfg,
		Root:     root,
		Filters:  testFilters(),
		Defaults: testFilters(),
	})
	m.copyText = func(s string) error {
		ts.copied = s
		return nil
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = settle(t, m, m.Init())
	return ts, m
}

var sampleFiles = map[string]string{
	"a/b/file1.txt": "one\n",
	"a/c/file2.txt": "two\n",
}

func nodePaths(m Model) []string {
	var out []string
	for _, n := range m.Result().Tree.Nodes {
		out = append(out, n.Path)
	}
	return out
}

func TestModeAndPopupStrings(t *testing.T) {
	assert.Equal(t, "Normal", ModeNormal.String())
	assert.Equal(t, "Breadcrumbs", ModeBreadcrumbs.String())
	assert.Equal(t, "Inspect", ModeInspect.String())
	assert.Equal(t, "Help", ModeHelp.String())
	assert.Equal(t, "Unknown", Mode(42).String())
	assert.Equal(t, "Reloading", PopupReloading.String())
	assert.Equal(t, "Nothing Found", PopupNothingFound.String())
}

func TestSessionInitialPass(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	require.Len(t, m.Result().Tree.Nodes, 5)
	assert.Equal(t, filepath.Join(ts.root, "a"), m.SelectedNode().Path)

	view := m.View()
	assert.Contains(t, view, "file1.txt")
	assert.Contains(t, view, "3 dirs, 2 files")
}

func TestSessionStartsReloading(t *testing.T) {
	m := New(context.Background(), Options{Root: t.TempDir()})
	assert.Equal(t, PopupReloading, m.Popup().Kind)
	assert.Equal(t, "Loading...", m.View())
}

func TestSessionEnterAndLeaveDirectory(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "enter")
	assert.Equal(t, filepath.Join(ts.root, "a"), m.Root())
	assert.Equal(t, filepath.Join(ts.root, "a", "b"), m.SelectedNode().Path)
	assert.Len(t, m.Result().Tree.Nodes, 4)

	m = press(t, m, "-")
	assert.Equal(t, ts.root, m.Root())
	assert.Equal(t, filepath.Join(ts.root, "a"), m.SelectedNode().Path)
}

func TestSessionMovement(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "j", "j")
	assert.Equal(t, filepath.Join(ts.root, "a", "b", "file1.txt"), m.SelectedNode().Path)

	m = press(t, m, "G")
	assert.Equal(t, filepath.Join(ts.root, "a", "c", "file2.txt"), m.SelectedNode().Path)

	m = press(t, m, "j")
	assert.Equal(t, filepath.Join(ts.root, "a", "c", "file2.txt"), m.SelectedNode().Path)

	m = press(t, m, "g", "k")
	assert.Equal(t, filepath.Join(ts.root, "a"), m.SelectedNode().Path)
}

func TestSessionPatternInput(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "/")
	require.Equal(t, PopupPatternInput, m.Popup().Kind)

	// q is text inside the input.
	m = press(t, m, "q")
	assert.Equal(t, PopupPatternInput, m.Popup().Kind)
	assert.Equal(t, "q", m.patternInput.Value())

	m = press(t, m, "backspace", "file1", "enter")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	assert.Equal(t, "file1", m.Filters().Pattern)
	assert.Equal(t, []string{
		filepath.Join(ts.root, "a"),
		filepath.Join(ts.root, "a", "b"),
		filepath.Join(ts.root, "a", "b", "file1.txt"),
	}, nodePaths(m))
}

func TestSessionPatternInputEscape(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "/", "zzz", "esc")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	assert.Empty(t, m.Filters().Pattern)
}

func TestSessionNoMatchesClearsPattern(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "/", "zzz", "enter")
	require.Equal(t, PopupNothingFound, m.Popup().Kind)
	assert.Contains(t, m.Popup().Message, `"zzz"`)
	assert.Contains(t, m.View(), "Nothing found")

	m = press(t, m, "x")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	assert.Empty(t, m.Filters().Pattern)
	assert.Len(t, m.Result().Tree.Nodes, 5)
}

func TestSessionNoMatchesSlashReopensInput(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "/", "zzz", "enter", "/")
	assert.Equal(t, PopupPatternInput, m.Popup().Kind)
	assert.Equal(t, "zzz", m.patternInput.Value())
}

func TestSessionNoMatchesAfterEnterKeepsRoot(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)
	before := nodePaths(m)

	m.runPass = func(_ context.Context, opts pass.Options, _ pass.Store) (*pass.Result, error) {
		return &pass.Result{Root: opts.Root, Tree: &tree.Tree{Root: opts.Root}}, pass.ErrNoMatches
	}
	m = press(t, m, "enter")
	require.Equal(t, PopupNothingFound, m.Popup().Kind)
	assert.Equal(t, ts.root, m.Root())
	assert.Equal(t, before, nodePaths(m))
}

func TestSessionEmptyDirectory(t *testing.T) {
	_, m := newTestSession(t, nil)

	assert.Equal(t, PopupNothingFound, m.Popup().Kind)
	assert.Empty(t, m.Result().Tree.Nodes)

	m = press(t, m, "j")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	assert.Nil(t, m.SelectedNode())
}

func TestSessionReloadingIgnoresKeys(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m, cmd := update(t, m, keyMsg("r"))
	require.NotNil(t, cmd)
	require.Equal(t, PopupReloading, m.Popup().Kind)

	before := m.SelectedNode()
	m, ignored := update(t, m, keyMsg("j"))
	assert.Nil(t, ignored)
	assert.Same(t, before, m.SelectedNode())

	m = settle(t, m, cmd)
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
}

func TestSessionErrorResetsToDefaults(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "enter")
	require.Equal(t, filepath.Join(ts.root, "a"), m.Root())

	m.runPass = func(context.Context, pass.Options, pass.Store) (*pass.Result, error) {
		return nil, errors.New("boom")
	}
	m = press(t, m, ".")
	require.Equal(t, PopupError, m.Popup().Kind)
	assert.Equal(t, "boom", m.Popup().Message)
	assert.True(t, m.Filters().ShowHidden)
	assert.Contains(t, m.View(), "boom")

	m.runPass = pass.Run
	m = press(t, m, "x")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	assert.Equal(t, testFilters(), m.Filters())
	assert.Equal(t, filepath.Join(ts.root, "a"), m.Root())
}

func TestSessionErrorRevertsRoot(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	require.NoError(t, os.RemoveAll(filepath.Join(ts.root, "a", "b")))
	m = press(t, m, "j", "enter")
	require.Equal(t, PopupError, m.Popup().Kind)
	assert.Equal(t, ts.root, m.Root())
}

func TestSessionErrorQuit(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)
	m.popup = Popup{Kind: PopupError, Message: "boom"}

	m, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, ExitQuit, m.Exit().Kind)
}

func TestSessionNestingIsFatal(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)
	m.runPass = func(context.Context, pass.Options, pass.Store) (*pass.Result, error) {
		return nil, tree.ErrNesting
	}

	m, cmd := update(t, m, keyMsg("r"))
	m, cmd = update(t, m, cmd())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.Err(), tree.ErrNesting)
}

func TestSessionToggles(t *testing.T) {
	_, m := newTestSession(t, map[string]string{
		"visible.txt": "v",
		".hidden":     "h",
		"dir/x.txt":   "x",
	})
	require.Len(t, m.Result().Tree.Nodes, 3)

	m = press(t, m, ".")
	assert.True(t, m.Filters().ShowHidden)
	assert.Len(t, m.Result().Tree.Nodes, 4)

	m = press(t, m, "d")
	assert.True(t, m.Filters().DirsOnly)
	assert.Len(t, m.Result().Tree.Nodes, 1)

	m = press(t, m, "d", "L")
	assert.False(t, m.Filters().Labels)
	assert.NotContains(t, m.View(), "[A]")

	m = press(t, m, "L")
	assert.Contains(t, m.View(), "[A]")
}

func TestSessionKeybindingsPopup(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "?")
	require.Equal(t, PopupKeybindings, m.Popup().Kind)
	assert.Contains(t, m.View(), "toggle hidden")

	m = press(t, m, "j")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
}

func TestSessionBreadcrumbs(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "tab")
	require.Equal(t, ModeBreadcrumbs, m.Mode())
	crumbs := m.crumbs()
	assert.Equal(t, ts.root, crumbs[len(crumbs)-1])
	assert.Equal(t, "/", crumbs[0])

	m = press(t, m, "h", "enter")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, filepath.Dir(ts.root), m.Root())
	assert.Equal(t, ts.root, m.SelectedNode().Path)

	m = press(t, m, "tab", "esc")
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestSessionSettings(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "S")
	require.Equal(t, PopupSettings, m.Popup().Kind)
	assert.Contains(t, m.View(), "Max depth")

	m = press(t, m, "l", "esc")
	assert.Equal(t, 0, m.Filters().MaxDepth)

	m = press(t, m, "S", "l", "j", "l", "enter")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	assert.Equal(t, 1, m.Filters().MaxDepth)
	assert.Equal(t, int64(10<<10), m.Filters().MaxFileSize)
	assert.Len(t, m.Result().Tree.Nodes, 1)
}

func TestSettingsFormSizeSteps(t *testing.T) {
	s := newSettingsForm(config.Filters{})
	s.cursor = 1

	s.adjust(-1)
	assert.Equal(t, int64(0), s.draft.MaxFileSize)
	for range sizeSteps {
		s.adjust(1)
	}
	assert.Equal(t, sizeSteps[len(sizeSteps)-1], s.draft.MaxFileSize)
	assert.Equal(t, "100 MiB", s.value(settingRows[1]))

	s.cursor = 2
	s.adjust(1)
	assert.True(t, s.draft.ShowHidden)
	assert.Equal(t, "[x]", s.value(settingRows[2]))
}

func TestSessionCopyAndExport(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "y")
	assert.Equal(t, filepath.Join(ts.root, "a"), ts.copied)

	m = press(t, m, "e")
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
	data, err := os.ReadFile(ts.cfg.ExportPath(ts.root))
	require.NoError(t, err)
	assert.Contains(t, string(data), "file2.txt")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestSessionCopyFailure(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)
	m.copyText = func(string) error { return errors.New("no clipboard") }

	m = press(t, m, "y")
	assert.Equal(t, PopupError, m.Popup().Kind)
	assert.Contains(t, m.Popup().Message, "no clipboard")
}

func TestSessionOpen(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "j", "j")
	m, cmd := update(t, m, keyMsg("o"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, ExitReason{Kind: ExitOpen, Path: filepath.Join(ts.root, "a", "b", "file1.txt")}, m.Exit())
}

func TestSessionInspect(t *testing.T) {
	ts, m := newTestSession(t, sampleFiles)

	m = press(t, m, "j", "j", "enter")
	require.Equal(t, ModeInspect, m.Mode())
	require.NotNil(t, m.inspect)
	assert.Equal(t, filepath.Join(ts.root, "a", "b", "file1.txt"), m.inspect.path)
	assert.Contains(t, m.View(), "one")

	// q is text inside the search input.
	m = press(t, m, "/", "q")
	assert.True(t, m.inspect.searching)
	assert.Equal(t, ModeInspect, m.Mode())

	m = press(t, m, "esc", "esc")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Nil(t, m.inspect)
}

func TestSessionInspectBadRegex(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "j", "j", "enter", "/", "(", "enter")
	require.Equal(t, PopupError, m.Popup().Kind)
	assert.Contains(t, m.Popup().Message, "invalid search pattern")

	m = press(t, m, "x")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, PopupDisabled, m.Popup().Kind)
}

func TestSessionInspectBinaryFile(t *testing.T) {
	_, m := newTestSession(t, map[string]string{"blob.bin": "\x00\x01\x02"})

	m = press(t, m, "enter")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, PopupError, m.Popup().Kind)
	assert.Contains(t, m.Popup().Message, "binary")
}

func TestSessionHelp(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m = press(t, m, "H")
	require.Equal(t, ModeHelp, m.Mode())
	assert.NotEmpty(t, m.View())

	m = press(t, m, "esc")
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestHelpMarkdownListsKeys(t *testing.T) {
	md := helpMarkdown()
	for _, b := range keys.bindings() {
		assert.Contains(t, md, "`"+b.Help().Key+"`")
	}
	assert.True(t, strings.HasPrefix(md, "# twig"))
}

func TestSessionQuit(t *testing.T) {
	_, m := newTestSession(t, sampleFiles)

	m, cmd := update(t, m, keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, ExitReason{Kind: ExitQuit}, m.Exit())
}
