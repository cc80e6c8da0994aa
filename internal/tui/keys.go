package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the console key bindings. It implements help.KeyMap.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	ShareSort  key.Binding
	ShareScale key.Binding
	Click      key.Binding
	Background key.Binding
	StopSort   key.Binding
	StopScale  key.Binding
	CycleMode  key.Binding
	Reverse    key.Binding
	Delete     key.Binding
	Rename     key.Binding
	Snapshot   key.Binding
	ClearAll   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next widget")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "prev widget")),
		ShareSort:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "take sort order")),
		ShareScale: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "take value scale")),
		Click:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "click widget")),
		Background: key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "click background")),
		StopSort:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop sort sharing")),
		StopScale:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "stop scale sharing")),
		CycleMode:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sort mode")),
		Reverse:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sort direction")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete widget")),
		Rename:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "rename widget")),
		Snapshot:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write snapshot")),
		ClearAll:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear all")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the one-line help bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.ShareSort, k.ShareScale, k.Click, k.Background, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped into columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Click, k.Background},
		{k.ShareSort, k.ShareScale, k.StopSort, k.StopScale},
		{k.CycleMode, k.Reverse, k.Rename, k.Delete},
		{k.Snapshot, k.ClearAll, k.Help, k.Quit},
	}
}
