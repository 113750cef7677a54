package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Quotes
	NextQuote   key.Binding
	CycleFilter key.Binding
	AddQuote    key.Binding

	// Sync
	SyncNow   key.Binding
	Conflicts key.Binding

	// Files
	Export key.Binding
	Import key.Binding

	// Panes
	ToggleActivity key.Binding

	// Modals
	Confirm      key.Binding
	NextField    key.Binding
	KeepLocal    key.Binding
	AcceptServer key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close dialog"),
		),

		NextQuote: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n/space", "Show another quote"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle category"),
		),
		AddQuote: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add quote"),
		),

		SyncNow: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sync now"),
		),
		Conflicts: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Resolve conflicts"),
		),

		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export quotes.json"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Import from file"),
		),

		ToggleActivity: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle activity log"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "down", "up"),
			key.WithHelp("tab", "Next field"),
		),
		KeepLocal: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Keep local"),
		),
		AcceptServer: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Accept server"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextQuote, k.CycleFilter, k.AddQuote, k.SyncNow, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, grouped by section.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextQuote, k.CycleFilter, k.AddQuote},
		{k.SyncNow, k.Conflicts},
		{k.Export, k.Import, k.ToggleActivity},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
