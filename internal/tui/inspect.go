package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tormodhaugland/twig/internal/outline"
)

var (
	gutterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	matchGutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))
	symbolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

var inspectKeys = []key.Binding{
	key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
	key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n/N", "next/prev match")),
	key.NewBinding(key.WithKeys("]", "["), key.WithHelp("]/[", "next/prev symbol")),
	key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}

// inspectView is the content pane of Inspect mode. Its search is
// independent of the tree pattern.
type inspectView struct {
	path        string
	lines       []string
	highlighted []string
	symbols     []outline.Symbol

	viewport  viewport.Model
	search    textinput.Model
	searching bool
	re        *regexp.Regexp
	matches   []int
	matchIdx  int

	width  int
	status string
}

func newInspectView(path string, lines []string, width, height int) *inspectView {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 256

	v := &inspectView{
		path:        path,
		lines:       lines,
		highlighted: highlight(path, lines),
		viewport:    viewport.New(width, max(height-1, 1)),
		search:      ti,
		width:       width,
	}

	source := []byte(strings.Join(lines, "\n"))
	if symbols, err := outline.Symbols(source, path); err == nil {
		v.symbols = symbols
	}

	v.render()
	return v
}

// highlight returns one colored line per input line, or the input when the
// highlighter's output cannot be lined up with it.
func highlight(path string, lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	source := strings.Join(lines, "\n") + "\n"

	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return lines
	}

	split := chroma.SplitTokensIntoLines(it.Tokens())
	if len(split) < len(lines) {
		return lines
	}

	out := make([]string, len(lines))
	for i := range lines {
		var buf bytes.Buffer
		if err := formatter.Format(&buf, style, chroma.Literator(split[i]...)); err != nil {
			return lines
		}
		out[i] = strings.ReplaceAll(buf.String(), "\n", "")
	}
	return out
}

func (v *inspectView) setSize(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = max(height-1, 1)
	v.render()
}

// render rebuilds the viewport content. Lines wider than the pane are
// truncated; the gutter marks search hits.
func (v *inspectView) render() {
	hits := make(map[int]bool, len(v.matches))
	for _, i := range v.matches {
		hits[i] = true
	}

	digits := len(fmt.Sprint(len(v.lines)))
	textWidth := v.width - digits - 1

	var sb strings.Builder
	for i, raw := range v.lines {
		num := fmt.Sprintf("%*d ", digits, i+1)
		if hits[i] {
			sb.WriteString(matchGutterStyle.Render(num))
		} else {
			sb.WriteString(gutterStyle.Render(num))
		}

		line := v.highlighted[i]
		if textWidth > 0 && runewidth.StringWidth(raw) > textWidth {
			line = runewidth.Truncate(raw, textWidth, "…")
		}
		sb.WriteString(line)
		if i < len(v.lines)-1 {
			sb.WriteString("\n")
		}
	}
	v.viewport.SetContent(sb.String())
}

// setPattern compiles pattern and indexes the matching lines. An empty
// pattern clears the search.
func (v *inspectView) setPattern(pattern string) error {
	v.matches = nil
	v.matchIdx = 0
	v.re = nil
	if pattern == "" {
		v.status = ""
		v.render()
		return nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	v.re = re
	for i, line := range v.lines {
		if re.MatchString(line) {
			v.matches = append(v.matches, i)
		}
	}
	v.render()

	if len(v.matches) == 0 {
		v.status = fmt.Sprintf("no match for %q", pattern)
		return nil
	}
	v.jumpToMatch()
	return nil
}

func (v *inspectView) jumpToMatch() {
	v.viewport.SetYOffset(v.matches[v.matchIdx])
	v.status = fmt.Sprintf("match %d/%d", v.matchIdx+1, len(v.matches))
}

func (v *inspectView) nextMatch() {
	if len(v.matches) == 0 {
		return
	}
	v.matchIdx = (v.matchIdx + 1) % len(v.matches)
	v.jumpToMatch()
}

func (v *inspectView) prevMatch() {
	if len(v.matches) == 0 {
		return
	}
	v.matchIdx = (v.matchIdx - 1 + len(v.matches)) % len(v.matches)
	v.jumpToMatch()
}

func (v *inspectView) jumpSymbol(forward bool) {
	line := v.viewport.YOffset
	var i int
	if forward {
		i = outline.Next(v.symbols, line)
	} else {
		i = outline.Prev(v.symbols, line)
	}
	if i < 0 {
		return
	}
	s := v.symbols[i]
	v.viewport.SetYOffset(s.Line)
	v.status = symbolStyle.Render(s.Kind + " " + s.Name)
}

func (v *inspectView) View() string {
	footer := helpStyle.Render(v.status)
	if v.searching {
		footer = v.search.View()
	}
	return v.viewport.View() + "\n" + footer
}

func (m Model) handleInspectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.inspect
	if v == nil {
		m.mode = ModeNormal
		return m, nil
	}

	if v.searching {
		switch msg.String() {
		case "enter":
			v.searching = false
			v.search.Blur()
			if err := v.setPattern(v.search.Value()); err != nil {
				m.popup = Popup{Kind: PopupError, Message: err.Error()}
			}
			return m, nil
		case "esc":
			v.searching = false
			v.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "backspace", "h", "left":
		m.mode = ModeNormal
		m.inspect = nil
		return m, nil
	case "o":
		return m.exitOpen(v.path)
	case "/":
		v.searching = true
		v.search.SetValue("")
		return m, v.search.Focus()
	case "n":
		v.nextMatch()
		return m, nil
	case "N":
		v.prevMatch()
		return m, nil
	case "]":
		v.jumpSymbol(true)
		return m, nil
	case "[":
		v.jumpSymbol(false)
		return m, nil
	case "g", "home":
		v.viewport.GotoTop()
		return m, nil
	case "G", "end":
		v.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return m, cmd
}
