package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// View switching
	GoChat     key.Binding
	GoPolls    key.Binding
	GoEvents   key.Binding
	GoMembers  key.Binding
	GoTasks    key.Binding
	GoPOS      key.Binding
	GoSettings key.Binding

	// Manual refresh
	Refresh key.Binding

	// Actions
	Compose key.Binding
	New     key.Binding
	Delete  key.Binding
	Dismiss key.Binding
	Logout  key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		GoChat: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "chat"),
		),
		GoPolls: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "polls"),
		),
		GoEvents: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "events"),
		),
		GoMembers: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "members"),
		),
		GoTasks: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "tasks"),
		),
		GoPOS: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "point of sale"),
		),
		GoSettings: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "settings"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Compose: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "compose"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss toast"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "sign out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Refresh, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.GoChat, k.GoPolls, k.GoEvents, k.GoMembers},
		{k.GoTasks, k.GoPOS, k.GoSettings},
		{k.Refresh, k.Compose, k.New, k.Delete, k.Dismiss, k.Logout},
	}
}
