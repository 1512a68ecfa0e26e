package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/tormodhaugland/twig/internal/config"
)

// sizeSteps are the choices for the size limit setting. Zero is no limit.
var sizeSteps = []int64{0, 10 << 10, 100 << 10, 1 << 20, 10 << 20, 100 << 20}

type settingKind int

const (
	settingToggle settingKind = iota
	settingDepth
	settingSize
)

type setting struct {
	label string
	kind  settingKind
	flag  func(*config.Filters) *bool
}

var settingRows = []setting{
	{label: "Max depth", kind: settingDepth},
	{label: "Max file size", kind: settingSize},
	{label: "Show hidden", flag: func(f *config.Filters) *bool { return &f.ShowHidden }},
	{label: "Ignore rules off", flag: func(f *config.Filters) *bool { return &f.NoIgnore }},
	{label: "Follow symlinks", flag: func(f *config.Filters) *bool { return &f.FollowLinks }},
	{label: "Directories only", flag: func(f *config.Filters) *bool { return &f.DirsOnly }},
	{label: "Labels", flag: func(f *config.Filters) *bool { return &f.Labels }},
	{label: "Git markers", flag: func(f *config.Filters) *bool { return &f.GitMarkers }},
	{label: "Icons", flag: func(f *config.Filters) *bool { return &f.Icons }},
	{label: "Metadata", flag: func(f *config.Filters) *bool { return &f.Metadata }},
	{label: "Plain", flag: func(f *config.Filters) *bool { return &f.Plain }},
}

// settingsForm edits a draft of the filters; nothing changes until the
// draft is applied.
type settingsForm struct {
	draft  config.Filters
	cursor int
}

func newSettingsForm(f config.Filters) *settingsForm {
	return &settingsForm{draft: f}
}

func (s *settingsForm) adjust(delta int) {
	row := settingRows[s.cursor]
	switch row.kind {
	case settingDepth:
		s.draft.MaxDepth = max(s.draft.MaxDepth+delta, 0)
	case settingSize:
		i := 0
		for j, step := range sizeSteps {
			if step <= s.draft.MaxFileSize {
				i = j
			}
		}
		i = min(max(i+delta, 0), len(sizeSteps)-1)
		s.draft.MaxFileSize = sizeSteps[i]
	default:
		p := row.flag(&s.draft)
		*p = !*p
	}
}

func (s *settingsForm) value(row setting) string {
	switch row.kind {
	case settingDepth:
		if s.draft.MaxDepth == 0 {
			return "unlimited"
		}
		return fmt.Sprint(s.draft.MaxDepth)
	case settingSize:
		if s.draft.MaxFileSize == 0 {
			return "unlimited"
		}
		return humanize.IBytes(uint64(s.draft.MaxFileSize))
	default:
		if *row.flag(&s.draft) {
			return "[x]"
		}
		return "[ ]"
	}
}

func (s *settingsForm) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Settings"))
	sb.WriteString("\n\n")
	for i, row := range settingRows {
		line := fmt.Sprintf("%-18s %s", row.label, s.value(row))
		if i == s.cursor {
			sb.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("j/k move • h/l or space change • enter apply • esc cancel"))
	return sb.String()
}

func (m Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.settings
	if s == nil {
		m.popup = Popup{}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "esc":
		m.settings = nil
		m.popup = Popup{}
	case "enter":
		m.filters = s.draft
		m.settings = nil
		return m.refresh()
	case "j", "down", "tab":
		s.cursor = (s.cursor + 1) % len(settingRows)
	case "k", "up", "shift+tab":
		s.cursor = (s.cursor - 1 + len(settingRows)) % len(settingRows)
	case "l", "right", "+", " ":
		s.adjust(1)
	case "h", "left", "-":
		s.adjust(-1)
	}
	return m, nil
}

func (m Model) renderPopup() string {
	width := min(max(m.width-8, 20), 72)

	switch m.popup.Kind {
	case PopupError:
		body := errorStyle.Render("Error") + "\n\n" + wrap(m.popup.Message, width-6) +
			"\n\n" + helpStyle.Render("any key: reset filters and reload • q: quit")
		return errorPopupStyle.Width(width).Render(body)

	case PopupNothingFound:
		body := titleStyle.Render("Nothing found") + "\n\n" + wrap(m.popup.Message, width-6)
		return popupStyle.Width(width).Render(body)

	case PopupReloading:
		return popupStyle.Render("Reloading " + m.root + " ...")

	case PopupPatternInput:
		body := titleStyle.Render("Pattern") + "\n\n" + m.patternInput.View() +
			"\n\n" + helpStyle.Render("enter apply • esc cancel • empty clears")
		return popupStyle.Width(width).Render(body)

	case PopupSettings:
		if m.settings == nil {
			return ""
		}
		return popupStyle.Render(m.settings.View())

	case PopupKeybindings:
		var sb strings.Builder
		sb.WriteString(titleStyle.Render("Keybindings"))
		sb.WriteString("\n\n")
		for _, b := range keys.bindings() {
			h := b.Help()
			fmt.Fprintf(&sb, "%-10s %s\n", h.Key, helpStyle.Render(h.Desc))
		}
		return popupStyle.Render(strings.TrimSuffix(sb.String(), "\n"))
	}
	return ""
}

// wrap breaks s into lines no wider than width cells.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// truncate cuts s to width cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if strings.Contains(s, "\x1b") {
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	}
	return runewidth.Truncate(s, width, "…")
}
