package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Enter       key.Binding
	Parent      key.Binding
	Pattern     key.Binding
	Hidden      key.Binding
	Ignore      key.Binding
	Icons       key.Binding
	Metadata    key.Binding
	GitMarkers  key.Binding
	Labels      key.Binding
	DirsOnly    key.Binding
	Plain       key.Binding
	Settings    key.Binding
	Export      key.Binding
	Copy        key.Binding
	Open        key.Binding
	Refresh     key.Binding
	Breadcrumbs key.Binding
	Keybindings key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Enter:       key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "enter dir / inspect file")),
	Parent:      key.NewBinding(key.WithKeys("backspace", "-", "h", "left"), key.WithHelp("-", "parent directory")),
	Pattern:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter by pattern")),
	Hidden:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "toggle hidden")),
	Ignore:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "toggle ignore rules")),
	Icons:       key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "toggle icons")),
	Metadata:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle metadata")),
	GitMarkers:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle git markers")),
	Labels:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "toggle labels")),
	DirsOnly:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle dirs only")),
	Plain:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle plain")),
	Settings:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "settings")),
	Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export tree")),
	Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
	Open:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "exit and open")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Breadcrumbs: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "breadcrumbs")),
	Keybindings: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keybindings")),
	Help:        key.NewBinding(key.WithKeys("H", "f1"), key.WithHelp("H", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// bindings lists the normal-mode keys in the order the keybindings popup
// shows them.
func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Top, k.Bottom, k.Enter, k.Parent, k.Pattern,
		k.Hidden, k.Ignore, k.Icons, k.Metadata, k.GitMarkers, k.Labels,
		k.DirsOnly, k.Plain, k.Settings, k.Export, k.Copy, k.Open,
		k.Refresh, k.Breadcrumbs, k.Keybindings, k.Help, k.Quit,
	}
}

// shortHelp is the footer line of normal mode.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Parent, k.Pattern, k.Breadcrumbs, k.Keybindings, k.Quit}
}
