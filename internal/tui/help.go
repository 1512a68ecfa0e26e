package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

var helpKeys = []key.Binding{
	key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
	key.NewBinding(key.WithKeys("esc", "H"), key.WithHelp("esc", "back")),
	key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

const helpIntro = `# twig

Browse a directory as a tree. Every directory line carries a letter label
(A, B, ... Z, A1, ...) and every file a number. The labels of the last
render are kept in the lookup cache, so ` + "`twig resolve`, `twig add` and `twig open`" + `
accept them as arguments.

Git markers: **M** modified, **A** added, **D** deleted, **R** renamed,
**C** copied, **U** conflicted, **?** untracked.

## Keys

`

const helpModes = `
## Inspect

| Key | Action |
|---|---|
| ` + "`/`" + ` | search the file (regular expression) |
| ` + "`n` / `N`" + ` | next / previous match |
| ` + "`]` / `[`" + ` | next / previous definition |
| ` + "`g` / `G`" + ` | top / bottom |
| ` + "`o`" + ` | exit and open the file |
| ` + "`esc`" + ` | back to the tree |

## Popups

While a popup is shown its own keys apply. After an error any key resets the
filters and reloads; ` + "`q`" + ` quits.
`

// helpMarkdown builds the reference page from the live key map.
func helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString(helpIntro)
	sb.WriteString("| Key | Action |\n|---|---|\n")
	for _, b := range keys.bindings() {
		h := b.Help()
		fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	sb.WriteString(helpModes)
	return sb.String()
}

func renderHelp(width int) string {
	md := helpMarkdown()
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

type helpView struct {
	viewport viewport.Model
}

func newHelpView(width, height int) *helpView {
	h := &helpView{viewport: viewport.New(width, max(height, 1))}
	h.viewport.SetContent(renderHelp(width))
	return h
}

func (h *helpView) setSize(width, height int) {
	h.viewport.Width = width
	h.viewport.Height = max(height, 1)
	h.viewport.SetContent(renderHelp(width))
}

func (h *helpView) View() string {
	return h.viewport.View()
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "H", "f1":
		m.mode = ModeNormal
		m.help = nil
		return m, nil
	}
	if m.help == nil {
		m.mode = ModeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.help.viewport, cmd = m.help.viewport.Update(msg)
	return m, cmd
}
