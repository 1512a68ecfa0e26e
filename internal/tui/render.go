package tui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/git"
	"github.com/tormodhaugland/twig/internal/tree"
)

// Styles for the session chrome.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Bold(true)

	crumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	activeCrumbStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true).
				Underline(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(1, 2)

	errorPopupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))
)

// nodeStyles are the theme colors resolved to lipgloss styles.
type nodeStyles struct {
	dir     lipgloss.Style
	file    lipgloss.Style
	symlink lipgloss.Style
	match   lipgloss.Style
	meta    lipgloss.Style
	markers map[git.Marker]lipgloss.Style
}

func newNodeStyles(theme *config.Theme) nodeStyles {
	if theme == nil {
		theme = config.DefaultTheme()
	}
	s := nodeStyles{
		dir:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Directory)),
		file:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.File)),
		symlink: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(theme.Symlink)),
		match:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(theme.Match)),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Meta)),
		markers: map[git.Marker]lipgloss.Style{},
	}
	for tag, color := range theme.Markers {
		s.markers[git.Marker(tag)] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	}
	return s
}

var iconsByExt = map[string]string{
	".go":   "\ue627",
	".md":   "\uf48a",
	".py":   "\ue606",
	".js":   "\ue74e",
	".ts":   "\ue628",
	".rs":   "\ue7a8",
	".json": "\ue60b",
	".yaml": "\ue6a8",
	".yml":  "\ue6a8",
	".toml": "\ue6b2",
	".sh":   "\uf489",
	".txt":  "\uf15c",
	".lock": "\uf023",
}

func icon(n *tree.Node) string {
	if n.Kind == tree.Directory {
		return "\uf07b"
	}
	if n.IsSymlink {
		return "\uf481"
	}
	if ic, ok := iconsByExt[strings.ToLower(filepath.Ext(n.Name()))]; ok {
		return ic
	}
	return "\uf15b"
}

// Decorator returns the line renderer for the given filters. Plain mode
// renders without any styling.
func Decorator(f config.Filters, theme *config.Theme) tree.Decorator {
	st := newNodeStyles(theme)
	plain := f.Plain
	render := func(style lipgloss.Style, s string) string {
		if plain || s == "" {
			return s
		}
		return style.Render(s)
	}

	return func(n *tree.Node) string {
		var sb strings.Builder

		if f.Icons {
			sb.WriteString(icon(n))
			sb.WriteString(" ")
		}

		base := st.file
		switch {
		case n.Kind == tree.Directory:
			base = st.dir
		case n.IsSymlink:
			base = st.symlink
		}

		name := n.Name()
		if sp := n.Span; sp != nil && sp.End <= len(name) && sp.Start < sp.End {
			sb.WriteString(render(base, tree.Escape(name[:sp.Start])))
			sb.WriteString(render(st.match, tree.Escape(name[sp.Start:sp.End])))
			sb.WriteString(render(base, tree.Escape(name[sp.End:])))
		} else {
			sb.WriteString(render(base, tree.Escape(name)))
		}
		if n.Kind == tree.Directory {
			sb.WriteString(render(base, "/"))
		}

		if f.GitMarkers && n.Marker != "" {
			sb.WriteString(" ")
			style, ok := st.markers[n.Marker]
			if !ok {
				style = st.meta
			}
			sb.WriteString(render(style, string(n.Marker)))
		}

		if f.Metadata && n.Kind == tree.Leaf {
			meta := humanize.Bytes(uint64(n.Size))
			if !n.ModTime.IsZero() {
				meta += " · " + humanize.Time(n.ModTime)
			}
			sb.WriteString("  ")
			sb.WriteString(render(st.meta, meta))
		}

		return sb.String()
	}
}
