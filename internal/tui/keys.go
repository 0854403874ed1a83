package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New        key.Binding
	Toggle     key.Binding
	ToggleAll  key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Filter     key.Binding
	FilterAll  key.Binding
	FilterAct  key.Binding
	FilterDone key.Binding
	Clear      key.Binding
	Dismiss    key.Binding
	Quit       key.Binding
	Commit     key.Binding
	CommitBlur key.Binding
	Cancel     key.Binding
	Up         key.Binding
	Down       key.Binding
	ForceQuit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New:        key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		ToggleAll:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "toggle all")),
		Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		FilterAll:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1/2/3", "all/active/completed")),
		FilterAct:  key.NewBinding(key.WithKeys("2")),
		FilterDone: key.NewBinding(key.WithKeys("3")),
		Clear:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		Dismiss:    key.NewBinding(key.WithKeys("x", "esc"), key.WithHelp("x", "dismiss error")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Commit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		CommitBlur: key.NewBinding(key.WithKeys("tab", "up", "down")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Toggle, k.Edit, k.Delete, k.Filter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.New, k.Toggle, k.ToggleAll},
		{k.Edit, k.Delete, k.Clear},
		{k.Filter, k.FilterAll, k.Dismiss, k.Quit},
	}
}
