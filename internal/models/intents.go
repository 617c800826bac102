package models

import (
	"fmt"

	"github.com/pdxmph/crm-tui/internal/db"
)

// IntentStore is the storage IntentsModel reads from and writes to
type IntentStore interface {
	ListIntents(contactID int64) ([]db.Intent, error)
	AddIntent(in db.Intent) (int64, error)
	UpdateIntent(in db.Intent) error
	DeleteIntents(ids []int64) error
}

// IntentsModel exposes the intents of the current contact
type IntentsModel struct {
	resetNotifier

	store   IntentStore
	contact int64
	rows    []db.Intent
}

// NewIntentsModel creates an intents model that selects nothing
func NewIntentsModel(store IntentStore) *IntentsModel {
	return &IntentsModel{store: store, contact: NoContact}
}

// SetContact scopes the model to a contact id and reloads
func (m *IntentsModel) SetContact(id int64) error {
	if id <= 0 {
		id = NoContact
	}
	m.contact = id
	return m.Select()
}

// Contact returns the contact id the model is scoped to
func (m *IntentsModel) Contact() int64 {
	return m.contact
}

// Select reloads the rows from the store and notifies subscribers
func (m *IntentsModel) Select() error {
	var err error
	m.rows = nil
	if m.contact != NoContact {
		m.rows, err = m.store.ListIntents(m.contact)
		if err != nil {
			err = fmt.Errorf("loading intents: %w", err)
		}
	}
	m.notify()
	return err
}

// Len returns the number of rows
func (m *IntentsModel) Len() int {
	return len(m.rows)
}

// Rows returns the loaded rows
func (m *IntentsModel) Rows() []db.Intent {
	return m.rows
}

// Row returns the intent at row
func (m *IntentsModel) Row(row int) (db.Intent, bool) {
	if !validRow(row, len(m.rows)) {
		return db.Intent{}, false
	}
	return m.rows[row], true
}

// AddIntent adds an intent to the current contact
func (m *IntentsModel) AddIntent(in db.Intent) error {
	if m.contact == NoContact {
		return fmt.Errorf("no contact to add an intent to")
	}
	in.ContactID = m.contact
	if _, err := m.store.AddIntent(in); err != nil {
		return err
	}
	return m.Select()
}

// UpdateIntent replaces the editable fields of the intent at row
func (m *IntentsModel) UpdateIntent(row int, in db.Intent) error {
	cur, ok := m.Row(row)
	if !ok {
		return fmt.Errorf("no intent at row %d", row)
	}
	in.ID = cur.ID
	in.ContactID = cur.ContactID
	if err := m.store.UpdateIntent(in); err != nil {
		return err
	}
	return m.Select()
}

// RemoveIntents deletes the intents at the given rows
func (m *IntentsModel) RemoveIntents(rows []int) error {
	ids := idsAt(rows, len(m.rows), func(i int) int64 { return m.rows[i].ID })
	if len(ids) == 0 {
		return nil
	}
	if err := m.store.DeleteIntents(ids); err != nil {
		return err
	}
	return m.Select()
}
