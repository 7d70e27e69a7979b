package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the viewer.
type keyMap struct {
	Quit        key.Binding
	Pause       key.Binding
	ToggleAlbum key.Binding
	CycleTheme  key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "Pause/resume listening"),
		),
		ToggleAlbum: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Toggle album details"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.ToggleAlbum, k.CycleTheme, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.ToggleAlbum},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
