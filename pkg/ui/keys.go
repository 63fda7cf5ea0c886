package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the control panel bindings. It implements help.KeyMap.
type KeyMap struct {
	Raise       key.Binding
	Lower       key.Binding
	PrevControl key.Binding
	NextControl key.Binding
	NextLabel   key.Binding
	Cluster     key.Binding
	MoreCluster key.Binding
	LessCluster key.Binding
	NextNode    key.Binding
	PrevNode    key.Binding
	SelectAll   key.Binding
	Clear       key.Binding
	Copy        key.Binding
	Snapshot    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Raise:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "threshold")),
		Lower:       key.NewBinding(key.WithKeys("-", "_")),
		PrevControl: key.NewBinding(key.WithKeys("[")),
		NextControl: key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "control")),
		NextLabel:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "matrix")),
		Cluster:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "cluster")),
		MoreCluster: key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "clusters")),
		LessCluster: key.NewBinding(key.WithKeys("N")),
		NextNode:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o/O", "node neighbours")),
		PrevNode:    key.NewBinding(key.WithKeys("O")),
		SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Clear:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy edges")),
		Snapshot:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Raise, k.NextControl, k.NextLabel, k.Cluster, k.MoreCluster, k.Snapshot, k.Help, k.Quit}
}

// FullHelp returns every binding with help text, grouped by column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Raise, k.NextControl, k.NextLabel},
		{k.Cluster, k.MoreCluster, k.NextNode, k.SelectAll, k.Clear},
		{k.Copy, k.Snapshot, k.Help, k.Quit},
	}
}
