package selection

import (
	"github.com/pdxmph/crm-tui/internal/db"
)

// SetNameFilter filters the contacts list by name. The current contact
// stays current if it still matches.
func (s *Synchronizer) SetNameFilter(text string) error {
	s.begin()
	s.submit()
	s.fail(s.contacts.SetNameFilter(text))
	return s.end()
}

// CreateContact adds a top-level contact and makes it current. A name
// filter that could hide it is cleared first.
func (s *Synchronizer) CreateContact(t db.ContactType, name string) error {
	s.begin()
	s.submit()
	if s.contacts.NameFilter() != "" {
		s.fail(s.contacts.SetNameFilter(""))
	}
	row, err := s.contacts.CreateContact(t, name)
	if err != nil {
		s.fail(err)
		return s.end()
	}
	s.setCurrentContact(row)
	return s.end()
}

// DeleteContact deletes the current contact with its persons, channels
// and intents
func (s *Synchronizer) DeleteContact() error {
	s.begin()
	row := s.contactRow
	if s.contacts.ID(row) != 0 {
		s.setCurrentContact(-1)
		s.fail(s.contacts.RemoveContacts([]int{row}))
	}
	return s.end()
}

// SetContactStatus changes the status of the current contact
func (s *Synchronizer) SetContactStatus(status string) error {
	s.begin()
	if s.contacts.ID(s.contactRow) != 0 {
		s.fail(s.contacts.SetData(s.contactRow, db.ColumnStatus, status))
	}
	return s.end()
}

// AddPerson adds a person to the current company
func (s *Synchronizer) AddPerson(name, status string) error {
	s.begin()
	if s.personsVisible {
		s.submit()
		_, err := s.persons.AddPerson(db.Contact{Name: name, Status: status})
		s.fail(err)
	}
	return s.end()
}

// EditPerson renames the current person and changes its status
func (s *Synchronizer) EditPerson(name, status string) error {
	s.begin()
	row := s.personRow
	if s.persons.ID(row) != 0 {
		s.fail(s.persons.SetData(row, db.ColumnName, name))
		if status != "" {
			s.fail(s.persons.SetData(row, db.ColumnStatus, status))
		}
		s.syncPersons()
	}
	return s.end()
}

// DeletePerson deletes the current person. The company is bound again.
func (s *Synchronizer) DeletePerson() error {
	s.begin()
	row := s.personRow
	if s.persons.ID(row) != 0 {
		s.setCurrentPerson(-1)
		s.syncPersons()
		s.fail(s.persons.RemoveContacts([]int{row}))
	}
	return s.end()
}

// AddChannel adds a channel to the most specific selected entity
func (s *Synchronizer) AddChannel(t db.ChannelType, value string) error {
	s.begin()
	if s.CurrentEntityID() != 0 {
		s.fail(s.channels.AddChannel(t, value))
	}
	return s.end()
}

// EditChannel changes the current channel
func (s *Synchronizer) EditChannel(t db.ChannelType, value string) error {
	s.begin()
	if _, ok := s.CurrentChannel(); ok {
		s.fail(s.channels.UpdateChannel(s.channelRow, t, value))
	}
	return s.end()
}

// DeleteChannels deletes the channels at rows, or the current channel
// when rows is empty
func (s *Synchronizer) DeleteChannels(rows []int) error {
	s.begin()
	if rows = s.channelRows(rows); len(rows) > 0 {
		s.SetCurrentChannel(-1)
		s.fail(s.channels.RemoveChannels(rows))
	}
	return s.end()
}

// VerifyChannels marks the channels at rows, or the current channel,
// as verified
func (s *Synchronizer) VerifyChannels(rows []int) error {
	s.begin()
	if rows = s.channelRows(rows); len(rows) > 0 {
		s.fail(s.channels.VerifyChannels(rows))
	}
	return s.end()
}

func (s *Synchronizer) channelRows(rows []int) []int {
	if len(rows) > 0 {
		return rows
	}
	if _, ok := s.CurrentChannel(); ok {
		return []int{s.channelRow}
	}
	return nil
}

// AddIntent adds an intent to the most specific selected entity
func (s *Synchronizer) AddIntent(in db.Intent) error {
	s.begin()
	if s.CurrentEntityID() != 0 {
		s.fail(s.intents.AddIntent(in))
	}
	return s.end()
}

// EditIntent changes the current intent
func (s *Synchronizer) EditIntent(in db.Intent) error {
	s.begin()
	if _, ok := s.CurrentIntent(); ok {
		s.fail(s.intents.UpdateIntent(s.intentRow, in))
	}
	return s.end()
}

// DeleteIntents deletes the intents at rows, or the current intent
// when rows is empty
func (s *Synchronizer) DeleteIntents(rows []int) error {
	s.begin()
	if len(rows) == 0 {
		if _, ok := s.CurrentIntent(); ok {
			rows = []int{s.intentRow}
		}
	}
	if len(rows) > 0 {
		s.SetCurrentIntent(-1)
		s.fail(s.intents.RemoveIntents(rows))
	}
	return s.end()
}
