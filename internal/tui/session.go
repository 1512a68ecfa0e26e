// Package tui is the interactive tree session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/logger"
	"github.com/tormodhaugland/twig/internal/pass"
	"github.com/tormodhaugland/twig/internal/tree"
)

// Mode is the focused view of the session.
type Mode int

const (
	ModeNormal      Mode = iota // Tree focused
	ModeBreadcrumbs             // Path segments of the root focused
	ModeInspect                 // Single file content
	ModeHelp                    // Static reference
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeBreadcrumbs:
		return "Breadcrumbs"
	case ModeInspect:
		return "Inspect"
	case ModeHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// PopupKind is the overlay shown on top of any mode.
type PopupKind int

const (
	PopupDisabled PopupKind = iota
	PopupError
	PopupPatternInput
	PopupSettings
	PopupNothingFound
	PopupReloading
	PopupKeybindings
)

func (p PopupKind) String() string {
	switch p {
	case PopupDisabled:
		return "Disabled"
	case PopupError:
		return "Error"
	case PopupPatternInput:
		return "Pattern"
	case PopupSettings:
		return "Settings"
	case PopupNothingFound:
		return "Nothing Found"
	case PopupReloading:
		return "Reloading"
	case PopupKeybindings:
		return "Keybindings"
	default:
		return "Unknown"
	}
}

// Popup carries a message for the Error and NothingFound kinds.
type Popup struct {
	Kind    PopupKind
	Message string
}

type ExitKind int

const (
	ExitQuit ExitKind = iota
	ExitOpen
)

// ExitReason says how the session ended. Path is set for ExitOpen.
type ExitReason struct {
	Kind ExitKind
	Path string
}

// Options configure a session.
type Options struct {
	Config   *config.Config
	Theme    *config.Theme
	Root     string
	Filters  config.Filters
	Defaults config.Filters
	Exclude  *fs.ExcludeList
	Store    pass.Store
}

type passFunc func(ctx context.Context, opts pass.Options, store pass.Store) (*pass.Result, error)

// passDoneMsg is posted when a refresh finishes.
type passDoneMsg struct {
	result     *pass.Result
	err        error
	selectPath string
}

// Model is the session state. It is only mutated inside Update.
type Model struct {
	ctx      context.Context
	cfg      *config.Config
	theme    *config.Theme
	store    pass.Store
	exclude  *fs.ExcludeList
	runPass  passFunc
	copyText func(string) error

	root     string
	lastRoot string
	filters  config.Filters
	defaults config.Filters

	result   *pass.Result
	lines    []string
	scroller *treeScroller

	mode  Mode
	popup Popup
	crumb int

	patternInput textinput.Model
	settings     *settingsForm
	inspect      *inspectView
	help         *helpView

	width   int
	height  int
	message string
	isError bool

	exit  ExitReason
	fatal error
}

const chromeLines = 4

func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	ti := textinput.New()
	ti.Placeholder = "regular expression"
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = "/ "

	return Model{
		ctx:          ctx,
		cfg:          cfg,
		theme:        opts.Theme,
		store:        opts.Store,
		exclude:      opts.Exclude,
		runPass:      pass.Run,
		copyText:     clipboard.WriteAll,
		root:         opts.Root,
		lastRoot:     opts.Root,
		filters:      opts.Filters,
		defaults:     opts.Defaults,
		scroller:     newTreeScroller(nil, 10),
		popup:        Popup{Kind: PopupReloading},
		patternInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return m.passCmd("")
}

// Mode, Popup, Root and Filters expose the state for callers and tests.
func (m Model) Mode() Mode               { return m.mode }
func (m Model) Popup() Popup             { return m.popup }
func (m Model) Root() string             { return m.root }
func (m Model) Filters() config.Filters  { return m.filters }
func (m Model) Exit() ExitReason         { return m.exit }
func (m Model) Err() error               { return m.fatal }
func (m Model) SelectedNode() *tree.Node { return m.scroller.selectedNode() }
func (m Model) Result() *pass.Result     { return m.result }

// passCmd runs one pass off the event loop and posts passDoneMsg. Key
// handling is suspended while the Reloading popup is up, so passes never
// overlap.
func (m Model) passCmd(selectPath string) tea.Cmd {
	ctx, run, store := m.ctx, m.runPass, m.store
	opts := pass.Options{Root: m.root, Filters: m.filters, Exclude: m.exclude}
	return func() tea.Msg {
		res, err := run(ctx, opts, store)
		return passDoneMsg{result: res, err: err, selectPath: selectPath}
	}
}

// refresh re-runs the pass and keeps the current selection.
func (m Model) refresh() (Model, tea.Cmd) {
	var sel string
	if n := m.scroller.selectedNode(); n != nil {
		sel = n.Path
	}
	return m.refreshAt(sel)
}

// refreshAt re-runs the pass and selects selectPath afterwards, or the top
// when it is empty.
func (m Model) refreshAt(selectPath string) (Model, tea.Cmd) {
	m.popup = Popup{Kind: PopupReloading}
	m.message = ""
	return m, m.passCmd(selectPath)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		visibleHeight := msg.Height - chromeLines
		if visibleHeight < 3 {
			visibleHeight = 3
		}
		m.scroller.setHeight(visibleHeight)
		if m.inspect != nil {
			m.inspect.setSize(msg.Width, visibleHeight)
		}
		if m.help != nil {
			m.help.setSize(msg.Width, visibleHeight)
		}
		return m, nil

	case passDoneMsg:
		return m.handlePassDone(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.popup.Kind == PopupPatternInput:
		m.patternInput, cmd = m.patternInput.Update(msg)
	case m.mode == ModeInspect && m.inspect != nil && m.inspect.searching:
		m.inspect.search, cmd = m.inspect.search.Update(msg)
	}
	return m, cmd
}

func (m Model) handlePassDone(msg passDoneMsg) (tea.Model, tea.Cmd) {
	log := logger.FromContext(m.ctx).WithValues(logger.RootKey, m.root)

	switch {
	case msg.err == nil:
		if err := m.apply(msg.result, msg.selectPath); err != nil {
			return m.fail(err)
		}
		m.lastRoot = m.root
		m.popup = Popup{}

	case errors.Is(msg.err, tree.ErrNesting):
		return m.fail(msg.err)

	case errors.Is(msg.err, pass.ErrNoMatches):
		// The previous tree stays on screen, so the header follows it.
		m.root = m.lastRoot
		m.popup = Popup{
			Kind:    PopupNothingFound,
			Message: fmt.Sprintf("No entries match %q. Press / to edit the pattern, any other key to clear it.", m.filters.Pattern),
		}

	case errors.Is(msg.err, pass.ErrNothingFound):
		if err := m.apply(msg.result, ""); err != nil {
			return m.fail(err)
		}
		m.lastRoot = m.root
		m.popup = Popup{Kind: PopupNothingFound, Message: "Nothing to show in " + m.root}

	default:
		log.Error(msg.err, "refresh failed")
		m.root = m.lastRoot
		m.popup = Popup{Kind: PopupError, Message: msg.err.Error()}
	}

	m.resetCrumb()
	return m, nil
}

// fail ends the session on an invariant violation.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	logger.FromContext(m.ctx).Error(err, "session aborted")
	m.fatal = err
	return m, tea.Quit
}

// apply renders res and swaps it in as the current tree.
func (m *Model) apply(res *pass.Result, selectPath string) error {
	p, err := res.Tree.Render(m.filters.Labels, Decorator(m.filters, m.theme))
	if err != nil {
		return err
	}
	m.result = res
	if res.Root != "" {
		m.root = res.Root
	}
	m.lines = p.Lines()
	m.scroller.updateTree(res.Tree.Nodes)
	if selectPath == "" || !m.scroller.selectByPath(selectPath) {
		m.scroller.moveToTop()
	}
	return nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.popup.Kind {
	case PopupReloading:
		return m, nil
	case PopupError:
		return m.handleErrorKeys(msg)
	case PopupPatternInput:
		return m.handlePatternKeys(msg)
	case PopupSettings:
		return m.handleSettingsKeys(msg)
	case PopupNothingFound:
		return m.handleNothingFoundKeys(msg)
	case PopupKeybindings:
		if msg.String() == "q" {
			return m.quit()
		}
		m.popup = Popup{}
		return m, nil
	}

	switch m.mode {
	case ModeBreadcrumbs:
		return m.handleBreadcrumbKeys(msg)
	case ModeInspect:
		return m.handleInspectKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.exit = ExitReason{Kind: ExitQuit}
	return m, tea.Quit
}

func (m Model) exitOpen(path string) (tea.Model, tea.Cmd) {
	m.exit = ExitReason{Kind: ExitOpen, Path: path}
	return m, tea.Quit
}

// handleErrorKeys drops back to a known-good state: any key resets the
// filters to their defaults and refreshes the last good root.
func (m Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m.quit()
	}
	m.filters = m.defaults
	m.root = m.lastRoot
	m.mode = ModeNormal
	m.inspect = nil
	m.help = nil
	m.patternInput.SetValue("")
	return m.refresh()
}

func (m Model) handleNothingFoundKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		return m.openPatternInput()
	case "q":
		return m.quit()
	}

	m.popup = Popup{}
	if m.filters.Pattern == "" {
		return m, nil
	}
	m.filters.Pattern = ""
	m.patternInput.SetValue("")
	return m.refresh()
}

func (m Model) openPatternInput() (tea.Model, tea.Cmd) {
	m.popup = Popup{Kind: PopupPatternInput}
	m.patternInput.SetValue(m.filters.Pattern)
	m.patternInput.CursorEnd()
	cmd := m.patternInput.Focus()
	return m, cmd
}

func (m Model) handlePatternKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.patternInput.Blur()
		m.filters.Pattern = strings.TrimSpace(m.patternInput.Value())
		return m.refresh()
	case "esc":
		m.patternInput.Blur()
		m.popup = Popup{}
		return m, nil
	}

	var cmd tea.Cmd
	m.patternInput, cmd = m.patternInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()

	case key.Matches(msg, keys.Down):
		m.scroller.moveDown()
	case key.Matches(msg, keys.Up):
		m.scroller.moveUp()
	case key.Matches(msg, keys.Top):
		m.scroller.moveToTop()
	case key.Matches(msg, keys.Bottom):
		m.scroller.moveToBottom()

	case key.Matches(msg, keys.Enter):
		node := m.scroller.selectedNode()
		if node == nil {
			return m, nil
		}
		if node.IsDir() {
			m.root = node.Path
			return m.refreshAt("")
		}
		return m.openInspect(node.Path)

	case key.Matches(msg, keys.Parent):
		parent := filepath.Dir(m.root)
		if parent == m.root {
			return m, nil
		}
		from := m.root
		m.root = parent
		return m.refreshAt(from)

	case key.Matches(msg, keys.Pattern):
		return m.openPatternInput()

	case key.Matches(msg, keys.Hidden):
		m.filters.ShowHidden = !m.filters.ShowHidden
		return m.refresh()
	case key.Matches(msg, keys.Ignore):
		m.filters.NoIgnore = !m.filters.NoIgnore
		return m.refresh()
	case key.Matches(msg, keys.Icons):
		m.filters.Icons = !m.filters.Icons
		return m.refresh()
	case key.Matches(msg, keys.Metadata):
		m.filters.Metadata = !m.filters.Metadata
		return m.refresh()
	case key.Matches(msg, keys.GitMarkers):
		m.filters.GitMarkers = !m.filters.GitMarkers
		return m.refresh()
	case key.Matches(msg, keys.Labels):
		m.filters.Labels = !m.filters.Labels
		return m.refresh()
	case key.Matches(msg, keys.DirsOnly):
		m.filters.DirsOnly = !m.filters.DirsOnly
		return m.refresh()
	case key.Matches(msg, keys.Plain):
		m.filters.Plain = !m.filters.Plain
		return m.refresh()
	case key.Matches(msg, keys.Refresh):
		return m.refresh()

	case key.Matches(msg, keys.Settings):
		m.settings = newSettingsForm(m.filters)
		m.popup = Popup{Kind: PopupSettings}

	case key.Matches(msg, keys.Export):
		return m.export()

	case key.Matches(msg, keys.Copy):
		path := m.root
		if node := m.scroller.selectedNode(); node != nil {
			path = node.Path
		}
		if err := m.copyText(path); err != nil {
			m.popup = Popup{Kind: PopupError, Message: fmt.Sprintf("copy to clipboard: %v", err)}
			return m, nil
		}
		m.setMessage("Copied "+path, false)

	case key.Matches(msg, keys.Open):
		if node := m.scroller.selectedNode(); node != nil {
			return m.exitOpen(node.Path)
		}

	case key.Matches(msg, keys.Breadcrumbs):
		m.mode = ModeBreadcrumbs
		m.resetCrumb()

	case key.Matches(msg, keys.Keybindings):
		m.popup = Popup{Kind: PopupKeybindings}

	case key.Matches(msg, keys.Help):
		m.help = newHelpView(m.width, m.height-chromeLines)
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) setMessage(msg string, isError bool) {
	m.message = msg
	m.isError = isError
}

// export writes the current tree without styling to the export path.
func (m Model) export() (tea.Model, tea.Cmd) {
	if m.result == nil {
		return m, nil
	}
	f := m.filters
	f.Plain = true
	f.Icons = false
	p, err := m.result.Tree.Render(f.Labels, Decorator(f, m.theme))
	if err != nil {
		return m.fail(err)
	}

	path := m.cfg.ExportPath(m.root)
	if err := tree.Export(path, p.String()); err != nil {
		m.popup = Popup{Kind: PopupError, Message: fmt.Sprintf("export: %v", err)}
		return m, nil
	}
	m.setMessage("Exported to "+path, false)
	return m, nil
}

// crumbs are the root and each of its ancestors, outermost first.
func (m Model) crumbs() []string {
	var out []string
	for p := m.root; ; p = filepath.Dir(p) {
		out = append([]string{p}, out...)
		if filepath.Dir(p) == p || p == "." || p == "" {
			break
		}
	}
	return out
}

func (m *Model) resetCrumb() {
	m.crumb = len(m.crumbs()) - 1
}

func (m Model) handleBreadcrumbKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	crumbs := m.crumbs()
	switch msg.String() {
	case "q":
		return m.quit()
	case "h", "left":
		if m.crumb > 0 {
			m.crumb--
		}
	case "l", "right":
		if m.crumb < len(crumbs)-1 {
			m.crumb++
		}
	case "enter":
		m.mode = ModeNormal
		target := crumbs[m.crumb]
		if target == m.root {
			return m, nil
		}
		from := m.root
		m.root = target
		return m.refreshAt(from)
	case "tab", "esc":
		m.mode = ModeNormal
		m.resetCrumb()
	}
	return m, nil
}

func (m Model) openInspect(path string) (tea.Model, tea.Cmd) {
	lines, err := fs.LoadLines(path)
	if err != nil {
		m.popup = Popup{Kind: PopupError, Message: err.Error()}
		return m, nil
	}
	m.inspect = newInspectView(path, lines, m.width, m.height-chromeLines)
	m.mode = ModeInspect
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.popup.Kind != PopupDisabled {
		if box := m.renderPopup(); box != "" {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
	}

	var body string
	switch m.mode {
	case ModeInspect:
		body = m.inspect.View()
	case ModeHelp:
		body = m.help.View()
	default:
		body = m.renderTree()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatus(), m.renderHelpLine())
}

func (m Model) renderHeader() string {
	if m.mode == ModeInspect && m.inspect != nil {
		return titleStyle.Render(truncate(m.inspect.path, m.width))
	}

	crumbs := m.crumbs()
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		name := filepath.Base(c)
		style := crumbStyle
		if m.mode == ModeBreadcrumbs && i == m.crumb {
			style = activeCrumbStyle
		}
		parts[i] = style.Render(name)
	}
	return truncate(strings.Join(parts, crumbStyle.Render(" › ")), m.width)
}

func (m Model) renderTree() string {
	var sb strings.Builder
	start, end := m.scroller.visibleRange()
	for i := start; i < end; i++ {
		line := ""
		if i+1 < len(m.lines) {
			line = m.lines[i+1]
		}
		if i == m.scroller.selected {
			sb.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	for i := end - start; i < m.scroller.height; i++ {
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m Model) renderStatus() string {
	if m.message != "" {
		if m.isError {
			return errorStyle.Render(m.message)
		}
		return successStyle.Render(m.message)
	}

	var parts []string
	if m.result != nil {
		parts = append(parts, fmt.Sprintf("%d dirs, %d files",
			len(m.result.Tree.Labels.Dirs), len(m.result.Tree.Labels.Files)))
	}
	if m.filters.Pattern != "" {
		parts = append(parts, "pattern: "+m.filters.Pattern)
	}
	if m.filters.ShowHidden {
		parts = append(parts, "hidden")
	}
	if m.filters.NoIgnore {
		parts = append(parts, "no-ignore")
	}
	if m.filters.DirsOnly {
		parts = append(parts, "dirs-only")
	}
	if m.filters.MaxDepth > 0 {
		parts = append(parts, fmt.Sprintf("depth %d", m.filters.MaxDepth))
	}
	return helpStyle.Render(truncate(strings.Join(parts, " · "), m.width))
}

func (m Model) renderHelpLine() string {
	var bindings []key.Binding
	switch m.mode {
	case ModeInspect:
		bindings = inspectKeys
	case ModeHelp:
		bindings = helpKeys
	case ModeBreadcrumbs:
		bindings = breadcrumbKeys
	default:
		bindings = keys.shortHelp()
	}
	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(truncate(strings.Join(parts, " • "), m.width))
}

var breadcrumbKeys = []key.Binding{
	key.NewBinding(key.WithKeys("h", "l"), key.WithHelp("h/l", "move")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to")),
	key.NewBinding(key.WithKeys("tab", "esc"), key.WithHelp("tab", "back to tree")),
}

// Run starts the session on the terminal and blocks until it exits.
func Run(ctx context.Context, opts Options) (ExitReason, error) {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return ExitReason{Kind: ExitQuit}, err
	}

	final := finalModel.(Model)
	if final.fatal != nil {
		return ExitReason{Kind: ExitQuit}, final.fatal
	}
	return final.exit, nil
}
