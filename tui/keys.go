package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	SwitchFocus key.Binding
	Up          key.Binding
	Down        key.Binding
	Add         key.Binding
	Rename      key.Binding
	Toggle      key.Binding
	Delete      key.Binding
	Timer       key.Binding
	ResetTimer  key.Binding
	Help        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		SwitchFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Rename:      key.NewBinding(key.WithKeys("e", "r"), key.WithHelp("e", "rename")),
		Toggle:      key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Timer:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/stop timer")),
		ResetTimer:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset timer")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchFocus, k.Toggle, k.Add, k.Timer, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchFocus},
		{k.Add, k.Rename, k.Toggle, k.Delete},
		{k.Timer, k.ResetTimer},
		{k.Help, k.Quit},
	}
}
