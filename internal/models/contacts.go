package models

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/pdxmph/crm-tui/internal/db"
)

// ContactStore is the storage ContactsModel reads from and writes to
type ContactStore interface {
	ListContacts(q db.ContactQuery) ([]db.Contact, error)
	AddContact(c db.Contact) (int64, error)
	UpdateContactField(id int64, col db.Column, value string) error
	DeleteContacts(ids []int64) error
}

// ContactsModel exposes contact rows either for the top-level list or
// for the persons of one company
type ContactsModel struct {
	resetNotifier

	store      ContactStore
	topLevel   bool
	parent     int64
	nameFilter string
	rows       []db.Contact
}

// NewContactsModel creates a model over top-level contacts
func NewContactsModel(store ContactStore) *ContactsModel {
	return &ContactsModel{store: store, topLevel: true, parent: NoContact}
}

// NewPersonsModel creates a model over the persons of a company. It
// selects nothing until SetParent is given a company id.
func NewPersonsModel(store ContactStore) *ContactsModel {
	return &ContactsModel{store: store, parent: NoContact}
}

// SetParent scopes a persons model to the company with the given id.
// NoContact empties it. The rows are reloaded by the next Select.
func (m *ContactsModel) SetParent(id int64) {
	if m.topLevel {
		return
	}
	if id <= 0 {
		id = NoContact
	}
	m.parent = id
}

// Parent returns the company id a persons model is scoped to
func (m *ContactsModel) Parent() int64 {
	return m.parent
}

// SetNameFilter sets the name filter and reloads the rows
func (m *ContactsModel) SetNameFilter(text string) error {
	m.nameFilter = text
	return m.Select()
}

// NameFilter returns the current name filter
func (m *ContactsModel) NameFilter() string {
	return m.nameFilter
}

// Select reloads the rows from the store and notifies subscribers
func (m *ContactsModel) Select() error {
	rows, err := m.load()
	m.rows = rows
	m.notify()
	return err
}

func (m *ContactsModel) load() ([]db.Contact, error) {
	q := db.ContactQuery{Name: m.nameFilter}
	if !m.topLevel {
		if m.parent == NoContact {
			return nil, nil
		}
		q.Parent = sql.NullInt64{Int64: m.parent, Valid: true}
	}

	rows, err := m.store.ListContacts(q)
	if err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}
	return rows, nil
}

// Len returns the number of rows
func (m *ContactsModel) Len() int {
	return len(m.rows)
}

// Rows returns the loaded rows
func (m *ContactsModel) Rows() []db.Contact {
	return m.rows
}

// Row returns the contact at row
func (m *ContactsModel) Row(row int) (db.Contact, bool) {
	if !validRow(row, len(m.rows)) {
		return db.Contact{}, false
	}
	return m.rows[row], true
}

// ID returns the id of the contact at row, or 0 for an invalid row
func (m *ContactsModel) ID(row int) int64 {
	if c, ok := m.Row(row); ok {
		return c.ID
	}
	return 0
}

// RowOf returns the row holding the contact with the given id, or -1
func (m *ContactsModel) RowOf(id int64) int {
	for i, c := range m.rows {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Value returns the display value of col at row
func (m *ContactsModel) Value(row int, col db.Column) (string, bool) {
	c, ok := m.Row(row)
	if !ok {
		return "", false
	}
	return c.Field(col), true
}

// SetData writes a single column of the contact at row through to the
// store. The loaded rows are updated in place, without a reset.
func (m *ContactsModel) SetData(row int, col db.Column, value string) error {
	c, ok := m.Row(row)
	if !ok {
		return fmt.Errorf("no contact at row %d", row)
	}
	if err := m.store.UpdateContactField(c.ID, col, value); err != nil {
		return err
	}
	m.rows[row].SetField(col, value)
	return nil
}

// CreateContact inserts a top-level contact, reloads and returns its row
func (m *ContactsModel) CreateContact(t db.ContactType, name string) (int, error) {
	id, err := m.store.AddContact(db.Contact{Type: t, Name: name})
	if err != nil {
		return -1, err
	}
	if err := m.Select(); err != nil {
		return -1, err
	}
	return m.RowOf(id), nil
}

// AddPerson inserts a person for the current parent, reloads and
// returns its row
func (m *ContactsModel) AddPerson(c db.Contact) (int, error) {
	if m.topLevel || m.parent == NoContact {
		return -1, fmt.Errorf("no company to add a person to")
	}
	c.ParentID = sql.NullInt64{Int64: m.parent, Valid: true}
	c.Type = db.ContactIndividual

	id, err := m.store.AddContact(c)
	if err != nil {
		return -1, err
	}
	if err := m.Select(); err != nil {
		return -1, err
	}
	return m.RowOf(id), nil
}

// RemoveContacts deletes the contacts at the given rows and reloads
func (m *ContactsModel) RemoveContacts(rows []int) error {
	ids := idsAt(rows, len(m.rows), func(i int) int64 { return m.rows[i].ID })
	if len(ids) == 0 {
		return nil
	}
	if err := m.store.DeleteContacts(ids); err != nil {
		return err
	}
	return m.Select()
}

// idsAt collects the ids of the distinct valid rows
func idsAt(rows []int, n int, id func(int) int64) []int64 {
	seen := make(map[int]bool)
	var valid []int
	for _, r := range rows {
		if validRow(r, n) && !seen[r] {
			seen[r] = true
			valid = append(valid, r)
		}
	}
	sort.Ints(valid)

	ids := make([]int64, len(valid))
	for i, r := range valid {
		ids[i] = id(r)
	}
	return ids
}
