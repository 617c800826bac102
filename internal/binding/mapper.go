package binding

import (
	"errors"

	"github.com/pdxmph/crm-tui/internal/db"
)

// RecordModel is a row model whose columns a Mapper can bind to
type RecordModel interface {
	ID(row int) int64
	RowOf(id int64) int
	Value(row int, col db.Column) (string, bool)
	SetData(row int, col db.Column, value string) error
}

// Mapper binds the columns of one record of a RecordModel to fields
// of a Form. The record is tracked by id, so a model reset that moves
// rows around does not redirect pending edits to another record.
type Mapper struct {
	model   RecordModel
	form    *Form
	id      int64
	columns [FieldCount]db.Column
	mapped  [FieldCount]bool
	loaded  [FieldCount]string
}

// NewMapper creates a mapper with no mappings and no current record
func NewMapper(model RecordModel, form *Form) *Mapper {
	return &Mapper{model: model, form: form}
}

// AddMapping binds field to col. If a record is current its value is
// loaded into the field immediately.
func (m *Mapper) AddMapping(field Field, col db.Column) {
	m.columns[field] = col
	m.mapped[field] = true
	m.form.bound[field] = true

	if row := m.CurrentIndex(); row >= 0 {
		m.loadField(row, field)
	}
}

// RemoveMapping unbinds field. The field keeps its value.
func (m *Mapper) RemoveMapping(field Field) {
	if !m.mapped[field] {
		return
	}
	m.mapped[field] = false
	m.form.bound[field] = false
}

// Release removes every mapping of this mapper
func (m *Mapper) Release() {
	for f := Field(0); f < FieldCount; f++ {
		m.RemoveMapping(f)
	}
	m.id = 0
}

// Mapped reports whether field is bound by this mapper
func (m *Mapper) Mapped(field Field) bool {
	return m.mapped[field]
}

// CurrentID returns the id of the bound record, or 0
func (m *Mapper) CurrentID() int64 {
	return m.id
}

// CurrentIndex returns the row of the bound record, or -1 when there
// is none or it has left the model
func (m *Mapper) CurrentIndex() int {
	if m.id == 0 {
		return -1
	}
	return m.model.RowOf(m.id)
}

// SetCurrentIndex binds the record at row and loads its values into
// every mapped field. An invalid row unbinds the record and leaves the
// field values alone.
func (m *Mapper) SetCurrentIndex(row int) {
	id := m.model.ID(row)
	if id == 0 {
		m.id = 0
		return
	}
	m.id = id
	for f := Field(0); f < FieldCount; f++ {
		if m.mapped[f] {
			m.loadField(row, f)
		}
	}
}

func (m *Mapper) loadField(row int, field Field) {
	v, _ := m.model.Value(row, m.columns[field])
	m.loaded[field] = v
	m.form.load(field, v)
}

// Submit writes every mapped field whose value changed since it was
// loaded back to the model. Edits to a record that has left the model
// are dropped.
func (m *Mapper) Submit() error {
	row := m.CurrentIndex()
	if row < 0 {
		return nil
	}

	var errs []error
	for f := Field(0); f < FieldCount; f++ {
		if !m.mapped[f] {
			continue
		}
		v := m.form.Value(f)
		if v == m.loaded[f] {
			continue
		}
		if err := m.model.SetData(row, m.columns[f], v); err != nil {
			errs = append(errs, err)
			continue
		}
		m.loaded[f] = v
	}
	return errors.Join(errs...)
}

// Dirty reports whether any mapped field differs from its loaded value
func (m *Mapper) Dirty() bool {
	if m.CurrentIndex() < 0 {
		return false
	}
	for f := Field(0); f < FieldCount; f++ {
		if m.mapped[f] && m.form.Value(f) != m.loaded[f] {
			return true
		}
	}
	return false
}
