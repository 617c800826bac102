// Package selection keeps the detail form, the persons list and the
// channel and intent lists bound to whatever is selected.
//
// The top-level contacts list drives everything. When the current
// contact is a company its persons are listed, and selecting one of
// them makes the person the most specific entity: the address fields,
// channels and intents then follow the person instead of the company.
// Every rebind submits pending form edits first.
package selection

import (
	"errors"
	"log/slog"

	"github.com/pdxmph/crm-tui/internal/actions"
	"github.com/pdxmph/crm-tui/internal/binding"
	"github.com/pdxmph/crm-tui/internal/db"
	"github.com/pdxmph/crm-tui/internal/models"
)

// Synchronizer owns the selection state and rebinds on every selection
// change or model reset
type Synchronizer struct {
	contacts *models.ContactsModel
	persons  *models.ContactsModel
	channels *models.ChannelsModel
	intents  *models.IntentsModel
	form     *binding.Form
	logger   *slog.Logger

	contactMapper *binding.Mapper
	personMapper  *binding.Mapper

	contactRow int
	contactID  int64
	personRow  int
	personID   int64
	channelRow int
	channelID  int64
	intentRow  int
	intentID   int64

	lastPersonClicked int
	personsVisible    bool

	errs []error
}

// New wires a synchronizer to its models. Call Start to load the
// contacts list.
func New(contacts, persons *models.ContactsModel, channels *models.ChannelsModel, intents *models.IntentsModel, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synchronizer{
		contacts:          contacts,
		persons:           persons,
		channels:          channels,
		intents:           intents,
		form:              binding.NewForm(),
		logger:            logger,
		contactRow:        -1,
		personRow:         -1,
		channelRow:        -1,
		intentRow:         -1,
		lastPersonClicked: -1,
	}

	contacts.OnReset(s.onContactsReset)
	persons.OnReset(s.onPersonsReset)
	channels.OnReset(s.onChannelsReset)
	intents.OnReset(s.onIntentsReset)

	return s
}

// Start loads the contacts list and binds to nothing
func (s *Synchronizer) Start() error {
	s.begin()
	s.fail(s.contacts.Select())
	return s.end()
}

// Form returns the detail form
func (s *Synchronizer) Form() *binding.Form { return s.form }

// Contacts returns the top-level contacts model
func (s *Synchronizer) Contacts() *models.ContactsModel { return s.contacts }

// Persons returns the persons model of the current company
func (s *Synchronizer) Persons() *models.ContactsModel { return s.persons }

// Channels returns the channels model of the current entity
func (s *Synchronizer) Channels() *models.ChannelsModel { return s.channels }

// Intents returns the intents model of the current entity
func (s *Synchronizer) Intents() *models.IntentsModel { return s.intents }

// CurrentContact returns the current row of the contacts list, or -1
func (s *Synchronizer) CurrentContact() int { return s.contactRow }

// CurrentPerson returns the current row of the persons list, or -1
func (s *Synchronizer) CurrentPerson() int { return s.personRow }

// CurrentChannelRow returns the current row of the channels list, or -1
func (s *Synchronizer) CurrentChannelRow() int { return s.channelRow }

// CurrentIntentRow returns the current row of the intents list, or -1
func (s *Synchronizer) CurrentIntentRow() int { return s.intentRow }

// PersonsVisible reports whether the persons list is shown
func (s *Synchronizer) PersonsVisible() bool { return s.personsVisible }

// PersonBound reports whether the form follows a person rather than
// the top-level contact
func (s *Synchronizer) PersonBound() bool { return s.personMapper != nil }

// CurrentEntityID returns the id of the most specific selected entity,
// or 0 when nothing is selected
func (s *Synchronizer) CurrentEntityID() int64 {
	if s.PersonBound() {
		return s.persons.ID(s.personRow)
	}
	return s.contacts.ID(s.contactRow)
}

// CurrentChannel returns the current channel
func (s *Synchronizer) CurrentChannel() (db.Channel, bool) {
	return s.channels.Row(s.channelRow)
}

// CurrentIntent returns the current intent
func (s *Synchronizer) CurrentIntent() (db.Intent, bool) {
	return s.intents.Row(s.intentRow)
}

// ActionState describes the selection for the action validator
func (s *Synchronizer) ActionState(mode actions.Mode, tab actions.Tab) actions.State {
	c, ok := s.contacts.Row(s.contactRow)
	_, personOK := s.persons.Row(s.personRow)
	_, intentOK := s.intents.Row(s.intentRow)

	st := actions.State{
		Mode:                 mode,
		Tab:                  tab,
		ContactSelected:      ok,
		ContactIsCorporation: ok && c.IsCorporation(),
		PersonSelected:       ok && personOK,
		EntitySelected:       s.CurrentEntityID() != 0,
		IntentSelected:       intentOK,
	}
	if ch, ok := s.CurrentChannel(); ok {
		st.Channel = &ch
	}
	return st
}

// SetCurrentContact makes row the current contact. An invalid row
// selects nothing.
func (s *Synchronizer) SetCurrentContact(row int) error {
	s.begin()
	s.setCurrentContact(row)
	return s.end()
}

func (s *Synchronizer) setCurrentContact(row int) {
	id := s.contacts.ID(row)
	if id == 0 {
		row = -1
	}
	if row == s.contactRow && id == s.contactID {
		return
	}
	s.contactRow = row
	s.contactID = id
	s.syncContacts()
}

// SetCurrentPerson moves the person cursor to row without counting it
// as a click
func (s *Synchronizer) SetCurrentPerson(row int) error {
	s.begin()
	s.setCurrentPerson(row)
	s.syncPersons()
	return s.end()
}

func (s *Synchronizer) setCurrentPerson(row int) {
	id := s.persons.ID(row)
	if id == 0 {
		row = -1
	}
	s.personRow = row
	s.personID = id
}

// ClickPerson selects the person at row. Clicking the row that was
// clicked last deselects it, so the company is bound again.
func (s *Synchronizer) ClickPerson(row int) error {
	s.begin()
	if s.persons.ID(row) != 0 {
		if s.lastPersonClicked == row {
			s.lastPersonClicked = -1
			row = -1
		} else {
			s.lastPersonClicked = row
		}
		s.setCurrentPerson(row)
		s.syncPersons()
	}
	return s.end()
}

// SetCurrentChannel moves the channel cursor
func (s *Synchronizer) SetCurrentChannel(row int) {
	if ch, ok := s.channels.Row(row); ok {
		s.channelRow, s.channelID = row, ch.ID
		return
	}
	s.channelRow, s.channelID = -1, 0
}

// SetCurrentIntent moves the intent cursor
func (s *Synchronizer) SetCurrentIntent(row int) {
	if in, ok := s.intents.Row(row); ok {
		s.intentRow, s.intentID = row, in.ID
		return
	}
	s.intentRow, s.intentID = -1, 0
}

// Resync recomputes every binding from the current selection
func (s *Synchronizer) Resync() error {
	s.begin()
	s.syncContacts()
	return s.end()
}

// Submit writes pending form edits to the store
func (s *Synchronizer) Submit() error {
	s.begin()
	s.submit()
	return s.end()
}

// Dirty reports whether the form has edits that are not submitted yet
func (s *Synchronizer) Dirty() bool {
	return (s.contactMapper != nil && s.contactMapper.Dirty()) ||
		(s.personMapper != nil && s.personMapper.Dirty())
}

func (s *Synchronizer) onContactsReset() {
	row := -1
	if s.contactID != 0 {
		row = s.contacts.RowOf(s.contactID)
	}
	s.logger.Debug("contacts model reset", "row", row)
	s.contactRow = row
	if row < 0 {
		s.contactID = 0
	}
	s.syncContacts()
}

func (s *Synchronizer) onPersonsReset() {
	row := -1
	if s.personID != 0 {
		row = s.persons.RowOf(s.personID)
	}
	s.setCurrentPerson(row)
	s.lastPersonClicked = -1
	s.syncPersons()
}

func (s *Synchronizer) onChannelsReset() {
	s.channelRow = -1
	for i, ch := range s.channels.Rows() {
		if s.channelID != 0 && ch.ID == s.channelID {
			s.channelRow = i
			break
		}
	}
	if s.channelRow < 0 {
		s.channelID = 0
	}
}

func (s *Synchronizer) onIntentsReset() {
	s.intentRow = -1
	for i, in := range s.intents.Rows() {
		if s.intentID != 0 && in.ID == s.intentID {
			s.intentRow = i
			break
		}
	}
	if s.intentRow < 0 {
		s.intentID = 0
	}
}

// syncContacts rebinds everything to the current top-level contact
func (s *Synchronizer) syncContacts() {
	s.submit()

	row := s.contactRow
	s.logger.Debug("synchronizing contact bindings", "row", row)

	c, ok := s.contacts.Row(row)
	if ok {
		if s.contactMapper == nil {
			s.contactMapper = binding.NewMapper(s.contacts, s.form)
			s.contactMapper.AddMapping(binding.FieldNotes, db.ColumnNotes)
			for _, f := range binding.AddressFields {
				s.contactMapper.AddMapping(f, binding.Columns[f])
			}
		}
		s.contactMapper.SetCurrentIndex(row)
		s.form.SetReadOnly(false)

		parent := models.NoContact
		s.personsVisible = c.IsCorporation()
		if s.personsVisible {
			parent = c.ID
		}
		if parent != s.persons.Parent() {
			s.setCurrentPerson(-1)
		}
		s.persons.SetParent(parent)
		// The persons reset rebinds the person level
		s.fail(s.persons.Select())
	} else {
		s.contactRow, s.contactID = -1, 0
		if s.contactMapper != nil {
			s.contactMapper.SetCurrentIndex(-1)
		}
		s.releasePerson()
		s.form.Clear()
		s.form.SetReadOnly(true)

		s.personsVisible = false
		s.setCurrentPerson(-1)
		s.persons.SetParent(models.NoContact)
		s.fail(s.persons.Select())
		s.fail(s.channels.SetContact(models.NoContact))
		s.fail(s.intents.SetContact(models.NoContact))
	}

	s.lastPersonClicked = -1
}

// syncPersons binds the address fields, channels and intents to the
// selected person, or to the contact when no person is selected
func (s *Synchronizer) syncPersons() {
	s.submit()

	contact, ok := s.contacts.Row(s.contactRow)
	if !ok || s.contactMapper == nil {
		return
	}

	if person, ok := s.persons.Row(s.personRow); ok {
		if s.personMapper == nil {
			for _, f := range binding.AddressFields {
				s.contactMapper.RemoveMapping(f)
			}
			s.personMapper = binding.NewMapper(s.persons, s.form)
			for _, f := range binding.AddressFields {
				s.personMapper.AddMapping(f, binding.Columns[f])
			}
			s.personMapper.AddMapping(binding.FieldPersonNotes, db.ColumnNotes)
		}
		s.personMapper.SetCurrentIndex(s.personRow)
		s.contactMapper.SetCurrentIndex(s.contactRow)
		s.logger.Debug("bound to person", "contact", contact.ID, "person", person.ID)
		s.bindEntity(person)
		return
	}

	s.setCurrentPerson(-1)
	s.releasePerson()
	s.contactMapper.SetCurrentIndex(s.contactRow)
	s.logger.Debug("bound to contact", "contact", contact.ID)
	s.bindEntity(contact)
}

// releasePerson drops the person mapper and hands the address fields
// back to the contact mapper
func (s *Synchronizer) releasePerson() {
	if s.personMapper == nil {
		return
	}
	s.personMapper.Release()
	s.personMapper = nil
	s.form.ClearField(binding.FieldPersonNotes)
	if s.contactMapper != nil {
		for _, f := range binding.AddressFields {
			s.contactMapper.AddMapping(f, binding.Columns[f])
		}
	}
}

func (s *Synchronizer) bindEntity(c db.Contact) {
	s.form.SetWho(&binding.Who{ID: c.ID, Name: c.Name, Type: c.Type})
	if s.channels.Contact() != c.ID {
		s.SetCurrentChannel(-1)
	}
	if s.intents.Contact() != c.ID {
		s.SetCurrentIntent(-1)
	}
	s.fail(s.channels.SetContact(c.ID))
	s.fail(s.intents.SetContact(c.ID))
}

func (s *Synchronizer) submit() {
	if s.contactMapper != nil {
		s.fail(s.contactMapper.Submit())
	}
	if s.personMapper != nil {
		s.fail(s.personMapper.Submit())
	}
}

func (s *Synchronizer) begin() {
	s.errs = nil
}

func (s *Synchronizer) fail(err error) {
	if err != nil {
		s.errs = append(s.errs, err)
	}
}

func (s *Synchronizer) end() error {
	err := errors.Join(s.errs...)
	s.errs = nil
	if err != nil {
		s.logger.Error("synchronizing selection", "error", err)
	}
	return err
}
