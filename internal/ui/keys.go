package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Panel focus
	NextPanel  key.Binding
	PrevPanel  key.Binding
	FocusPanel key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Correlation
	SelectSecond key.Binding
	PrevSecond   key.Binding
	NextSecond   key.Binding

	// Search
	Search    key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding

	// Toggles
	ToggleSync       key.Binding
	ToggleGroup      key.Binding
	ToggleTimestamps key.Binding

	// Actions
	Export key.Binding
	Reload key.Binding

	// Search/input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Clear search/selection"),
		),

		// Panel focus
		NextPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next panel"),
		),
		PrevPanel: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous panel"),
		),
		FocusPanel: key.NewBinding(
			key.WithKeys("1", "2", "3"),
			key.WithHelp("1-3", "Focus panel"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("u", "ctrl+u"),
			key.WithHelp("u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("d", "ctrl+d"),
			key.WithHelp("d", "Half page down"),
		),

		// Correlation
		SelectSecond: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Select second"),
		),
		PrevSecond: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous second"),
		),
		NextSecond: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next second"),
		),

		// Search
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),

		// Toggles
		ToggleSync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle sync scroll"),
		),
		ToggleGroup: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Toggle second grouping"),
		),
		ToggleTimestamps: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Toggle timestamps"),
		),

		// Actions
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Export loaded lines"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),

		// Search/input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Focus and navigation
		{k.NextPanel, k.FocusPanel, k.Up, k.Down},
		{k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		// Correlation
		{k.SelectSecond, k.PrevSecond, k.NextSecond, k.Escape},
		// Search
		{k.Search, k.NextMatch, k.PrevMatch},
		// Toggles and actions
		{k.ToggleSync, k.ToggleGroup, k.ToggleTimestamps, k.Export, k.Reload},
		// General
		{k.CycleTheme, k.Help, k.Quit},
	}
}
