// Package binding maps record columns onto the editable fields of the
// detail form, the way a data-widget mapper does in a desktop toolkit.
package binding

import "github.com/pdxmph/crm-tui/internal/db"

// Field identifies one editable field of the detail form
type Field int

const (
	// FieldNotes always shows the top-level contact's notes
	FieldNotes Field = iota
	FieldAddress1
	FieldAddress2
	FieldCity
	FieldPostCode
	FieldCountry
	// FieldPersonNotes shows the notes of a person selected within a company
	FieldPersonNotes
	FieldCount
)

// AddressFields follow the most specific selected entity
var AddressFields = []Field{
	FieldAddress1,
	FieldAddress2,
	FieldCity,
	FieldPostCode,
	FieldCountry,
}

// Columns maps each field to the contact column it normally shows
var Columns = [FieldCount]db.Column{
	FieldNotes:       db.ColumnNotes,
	FieldAddress1:    db.ColumnAddress1,
	FieldAddress2:    db.ColumnAddress2,
	FieldCity:        db.ColumnCity,
	FieldPostCode:    db.ColumnPostCode,
	FieldCountry:     db.ColumnCountry,
	FieldPersonNotes: db.ColumnNotes,
}

// Labels are the display names of the fields
var Labels = [FieldCount]string{
	FieldNotes:       "Notes",
	FieldAddress1:    "Address",
	FieldAddress2:    "Address 2",
	FieldCity:        "City",
	FieldPostCode:    "Post code",
	FieldCountry:     "Country",
	FieldPersonNotes: "Person notes",
}

// Who describes the entity the detail form is bound to
type Who struct {
	ID   int64
	Name string
	Type db.ContactType
}

// Form is the state of the detail widgets: field values, which fields
// are bound to a record, and whether editing is allowed
type Form struct {
	values   [FieldCount]string
	bound    [FieldCount]bool
	readOnly bool
	who      *Who
}

// NewForm returns an empty, read-only form
func NewForm() *Form {
	return &Form{readOnly: true}
}

// Value returns the current value of a field
func (f *Form) Value(field Field) string {
	return f.values[field]
}

// SetValue edits a field. Edits to a read-only form or an unbound field
// are refused.
func (f *Form) SetValue(field Field, value string) bool {
	if !f.Editable(field) {
		return false
	}
	f.values[field] = value
	return true
}

// Editable reports whether a field can currently be edited
func (f *Form) Editable(field Field) bool {
	return !f.readOnly && field >= 0 && field < FieldCount && f.bound[field]
}

// Bound reports whether a field is mapped to a record
func (f *Form) Bound(field Field) bool {
	return f.bound[field]
}

// ReadOnly reports whether the form refuses edits
func (f *Form) ReadOnly() bool {
	return f.readOnly
}

// SetReadOnly toggles editing for the whole form
func (f *Form) SetReadOnly(readOnly bool) {
	f.readOnly = readOnly
}

// Who returns the entity the form is bound to, or nil
func (f *Form) Who() *Who {
	return f.who
}

// SetWho records which entity the form is bound to
func (f *Form) SetWho(who *Who) {
	f.who = who
}

// Clear empties every field and forgets the bound entity
func (f *Form) Clear() {
	f.values = [FieldCount]string{}
	f.who = nil
}

// ClearField empties a single field
func (f *Form) ClearField(field Field) {
	f.values[field] = ""
}

func (f *Form) load(field Field, value string) {
	f.values[field] = value
}
