// Package actions computes which commands are available for the
// current mode, tab and selection.
package actions

import (
	"github.com/pdxmph/crm-tui/internal/channel"
	"github.com/pdxmph/crm-tui/internal/db"
)

// Mode is the screen the application shows
type Mode int

const (
	ModePanel Mode = iota
	ModeContacts
)

func (m Mode) String() string {
	if m == ModeContacts {
		return "Contacts"
	}
	return "Panel"
}

// Tab is the active tab of the contact detail pane
type Tab int

const (
	TabContact Tab = iota
	TabIntents
)

func (t Tab) String() string {
	if t == TabIntents {
		return "Intents"
	}
	return "Contact"
}

// State is everything the validator looks at
type State struct {
	Mode Mode
	Tab  Tab

	// ContactSelected is true when a row of the top-level list is current
	ContactSelected bool
	// ContactIsCorporation is true when that row is a company
	ContactIsCorporation bool
	// PersonSelected is true when a person within the company is current
	PersonSelected bool
	// EntitySelected is true when the most specific entity (person if
	// bound, else the contact) is valid
	EntitySelected bool

	// Channel is the current channel, nil when none is
	Channel *db.Channel
	// IntentSelected is true when a row of the intents list is current
	IntentSelected bool
}

// Set holds the enabled state of every command
type Set struct {
	AddContact    bool
	AddCompany    bool
	DeleteContact bool
	SetStatus     bool

	AddPerson    bool
	EditPerson   bool
	DeletePerson bool

	AddChannel    bool
	EditChannel   bool
	DeleteChannel bool
	VerifyChannel bool
	CopyChannel   bool
	OpenChannel   bool

	AddIntent    bool
	EditIntent   bool
	DeleteIntent bool
}

// Validate returns the commands enabled in state s
func Validate(s State) Set {
	var a Set

	contacts := s.Mode == ModeContacts

	a.AddContact = contacts
	a.AddCompany = contacts
	a.DeleteContact = contacts && s.ContactSelected
	a.SetStatus = a.DeleteContact

	a.AddPerson = contacts && s.ContactSelected && s.ContactIsCorporation
	a.EditPerson = a.AddPerson && s.PersonSelected
	a.DeletePerson = a.EditPerson

	a.AddChannel = contacts && s.EntitySelected && s.Tab == TabContact
	if a.AddChannel && s.Channel != nil {
		a.EditChannel = true
		a.DeleteChannel = true
		a.VerifyChannel = true
		a.CopyChannel = true
		a.OpenChannel = channel.Openable(s.Channel.Type, s.Channel.Value)
	}

	a.AddIntent = contacts && s.EntitySelected && s.Tab == TabIntents
	a.EditIntent = a.AddIntent && s.IntentSelected
	a.DeleteIntent = a.EditIntent

	return a
}
