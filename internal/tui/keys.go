package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Commands
	StartScrape   key.Binding
	StartDownload key.Binding
	Stop          key.Binding

	// Log
	ClearLog  key.Binding
	Reconnect key.Binding
	Filter    key.Binding
	Copy      key.Binding

	// URL field
	Recall key.Binding

	// General
	SwitchFocus  key.Binding
	Help         key.Binding
	HelpAnywhere key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Commands
		StartScrape: key.NewBinding(
			key.WithKeys("enter", "ctrl+s"),
			key.WithHelp("enter/C-s", "start scrape"),
		),
		StartDownload: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "start download"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "stop"),
		),

		// Log
		ClearLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear log"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reconnect log"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter log (log focus)"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy log"),
		),

		// URL field
		Recall: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "recall targets"),
		),

		// General
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help (log focus)"),
		),
		HelpAnywhere: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
