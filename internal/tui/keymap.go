package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global bindings handled by the app shell. View
// bindings live in the views themselves.
type keyMap struct {
	Operations key.Binding
	Admin      key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Operations: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "operations"),
		),
		Admin: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "admin board"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
