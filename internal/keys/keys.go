package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Reload the board file
	Refresh key.Binding

	// Filters
	CycleUrgency key.Binding
	CycleMonth   key.Binding
	ClearFilters key.Binding

	// Sort
	CycleSort key.Binding

	// Record actions
	Open key.Binding
	Add  key.Binding
	Edit key.Binding
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
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		CycleUrgency: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "cycle urgency"),
		),
		CycleMonth: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cycle month"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab", "s"),
			key.WithHelp("tab/s", "cycle sort"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "v"),
			key.WithHelp("enter/v", "board details"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add board"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit board"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Search, k.CycleSort,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit},
		{k.Search, k.Help, k.Refresh},
		{k.CycleUrgency, k.CycleMonth, k.ClearFilters, k.CycleSort},
		{k.Open, k.Add, k.Edit},
	}
}
