package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit   key.Binding
	Detach key.Binding
}

var Keys = KeyMap{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Detach: key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "detach")),
}
