package models

import (
	"fmt"

	"github.com/pdxmph/crm-tui/internal/db"
)

// ChannelStore is the storage ChannelsModel reads from and writes to
type ChannelStore interface {
	ListChannels(contactID int64) ([]db.Channel, error)
	AddChannel(ch db.Channel) (int64, error)
	UpdateChannel(ch db.Channel) error
	DeleteChannels(ids []int64) error
	VerifyChannels(ids []int64) error
}

// ChannelsModel exposes the channels of the current contact
type ChannelsModel struct {
	resetNotifier

	store   ChannelStore
	contact int64
	rows    []db.Channel
}

// NewChannelsModel creates a channels model that selects nothing
func NewChannelsModel(store ChannelStore) *ChannelsModel {
	return &ChannelsModel{store: store, contact: NoContact}
}

// SetContact scopes the model to a contact id and reloads. Ids that
// are not positive select nothing.
func (m *ChannelsModel) SetContact(id int64) error {
	if id <= 0 {
		id = NoContact
	}
	m.contact = id
	return m.Select()
}

// Contact returns the contact id the model is scoped to
func (m *ChannelsModel) Contact() int64 {
	return m.contact
}

// Select reloads the rows from the store and notifies subscribers
func (m *ChannelsModel) Select() error {
	var err error
	m.rows = nil
	if m.contact != NoContact {
		m.rows, err = m.store.ListChannels(m.contact)
		if err != nil {
			err = fmt.Errorf("loading channels: %w", err)
		}
	}
	m.notify()
	return err
}

// Len returns the number of rows
func (m *ChannelsModel) Len() int {
	return len(m.rows)
}

// Rows returns the loaded rows
func (m *ChannelsModel) Rows() []db.Channel {
	return m.rows
}

// Row returns the channel at row
func (m *ChannelsModel) Row(row int) (db.Channel, bool) {
	if !validRow(row, len(m.rows)) {
		return db.Channel{}, false
	}
	return m.rows[row], true
}

// AddChannel adds a channel to the current contact
func (m *ChannelsModel) AddChannel(t db.ChannelType, value string) error {
	if m.contact == NoContact {
		return fmt.Errorf("no contact to add a channel to")
	}
	if _, err := m.store.AddChannel(db.Channel{ContactID: m.contact, Type: t, Value: value}); err != nil {
		return err
	}
	return m.Select()
}

// UpdateChannel changes the type and value of the channel at row
func (m *ChannelsModel) UpdateChannel(row int, t db.ChannelType, value string) error {
	ch, ok := m.Row(row)
	if !ok {
		return fmt.Errorf("no channel at row %d", row)
	}
	ch.Type = t
	ch.Value = value
	if err := m.store.UpdateChannel(ch); err != nil {
		return err
	}
	return m.Select()
}

// RemoveChannels deletes the channels at the given rows
func (m *ChannelsModel) RemoveChannels(rows []int) error {
	ids := idsAt(rows, len(m.rows), func(i int) int64 { return m.rows[i].ID })
	if len(ids) == 0 {
		return nil
	}
	if err := m.store.DeleteChannels(ids); err != nil {
		return err
	}
	return m.Select()
}

// VerifyChannels marks the channels at the given rows as verified
func (m *ChannelsModel) VerifyChannels(rows []int) error {
	ids := idsAt(rows, len(m.rows), func(i int) int64 { return m.rows[i].ID })
	if len(ids) == 0 {
		return nil
	}
	if err := m.store.VerifyChannels(ids); err != nil {
		return err
	}
	return m.Select()
}
