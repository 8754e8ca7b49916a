package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the viewer key bindings.
type keyMap struct {
	Toggle     key.Binding
	Collapse   key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Pan        key.Binding
	Fit        key.Binding
	Fullscreen key.Binding
	Direction  key.Binding
	ExportPNG  key.Binding
	ExportSVG  key.Binding
	Reload     key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand/collapse"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("backspace", "u"),
			key.WithHelp("u", "up a level"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "select up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "select down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "select left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "select right"),
		),
		Pan: key.NewBinding(
			key.WithKeys("shift+up", "shift+down", "shift+left", "shift+right", "K", "J", "H", "L"),
			key.WithHelp("HJKL", "pan"),
		),
		Fit: key.NewBinding(
			key.WithKeys("0", "z"),
			key.WithHelp("z", "fit"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		Direction: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "TB/LR"),
		),
		ExportPNG: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export png"),
		),
		ExportSVG: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export svg"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "exit fullscreen"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Fit, k.Fullscreen, k.ExportPNG, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Collapse, k.Up, k.Down, k.Left, k.Right},
		{k.Pan, k.Fit, k.Fullscreen, k.Direction},
		{k.ExportPNG, k.ExportSVG, k.Reload, k.Help, k.Back, k.Quit},
	}
}
