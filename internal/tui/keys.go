package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the CRM screen. Most keys are
// context-sensitive: what they act on depends on the focused pane.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// Focus and layout
	NextPane    key.Binding
	PrevPane    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	ModePanel   key.Binding
	ModeContact key.Binding

	// Selection
	Select key.Binding // Click a person, edit a detail field
	Mark   key.Binding // Mark a channel for bulk delete/verify

	Filter key.Binding

	// Mutations
	AddContact key.Binding
	AddCompany key.Binding
	New        key.Binding // Add a person, channel or intent
	Edit       key.Binding
	Delete     key.Binding
	Status     key.Binding
	Verify     key.Binding
	Submit     key.Binding

	// Channel actions
	Copy key.Binding
	Open key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	NextPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next pane"),
	),
	PrevPane: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "prev pane"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev tab"),
	),
	ModePanel: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "panel"),
	),
	ModeContact: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "contacts"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Mark: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "mark"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	AddContact: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add contact"),
	),
	AddCompany: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "add company"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	Verify: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "verify"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// hint renders a binding the way the help line shows it
func hint(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}
