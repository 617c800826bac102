package db

import (
	"database/sql"
	"fmt"
	"time"
)

// ContactType distinguishes individuals from companies
type ContactType int

const (
	ContactIndividual ContactType = iota
	ContactCorporation
)

func (t ContactType) String() string {
	switch t {
	case ContactIndividual:
		return "individual"
	case ContactCorporation:
		return "corporation"
	default:
		return fmt.Sprintf("ContactType(%d)", int(t))
	}
}

// ContactStatuses lists the statuses a contact can be in
var ContactStatuses = []string{
	"lead",
	"prospect",
	"active",
	"dormant",
	"former",
}

// DefaultStatus is assigned to contacts created without one
const DefaultStatus = "active"

// Column names a contact column that can be edited through a field binding
type Column string

const (
	ColumnName     Column = "name"
	ColumnStatus   Column = "status"
	ColumnAddress1 Column = "address1"
	ColumnAddress2 Column = "address2"
	ColumnCity     Column = "city"
	ColumnPostCode Column = "postcode"
	ColumnCountry  Column = "country"
	ColumnNotes    Column = "notes"
)

// editableColumns is the whitelist for UpdateContactField
var editableColumns = map[Column]bool{
	ColumnName:     true,
	ColumnStatus:   true,
	ColumnAddress1: true,
	ColumnAddress2: true,
	ColumnCity:     true,
	ColumnPostCode: true,
	ColumnCountry:  true,
	ColumnNotes:    true,
}

// Contact represents a person or a company in the database
type Contact struct {
	ID         int64
	ExternalID string
	ParentID   sql.NullInt64
	Type       ContactType
	Name       string
	Status     string
	Address1   sql.NullString
	Address2   sql.NullString
	City       sql.NullString
	PostCode   sql.NullString
	Country    sql.NullString
	Notes      sql.NullString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsCorporation reports whether the contact is a company
func (c Contact) IsCorporation() bool {
	return c.Type == ContactCorporation
}

// Field returns the display value of an editable column
func (c Contact) Field(col Column) string {
	switch col {
	case ColumnName:
		return c.Name
	case ColumnStatus:
		return c.Status
	case ColumnAddress1:
		return c.Address1.String
	case ColumnAddress2:
		return c.Address2.String
	case ColumnCity:
		return c.City.String
	case ColumnPostCode:
		return c.PostCode.String
	case ColumnCountry:
		return c.Country.String
	case ColumnNotes:
		return c.Notes.String
	}
	return ""
}

// SetField sets an editable column from its display value
func (c *Contact) SetField(col Column, value string) {
	switch col {
	case ColumnName:
		c.Name = value
	case ColumnStatus:
		c.Status = value
	case ColumnAddress1:
		c.Address1 = NewNullString(value)
	case ColumnAddress2:
		c.Address2 = NewNullString(value)
	case ColumnCity:
		c.City = NewNullString(value)
	case ColumnPostCode:
		c.PostCode = NewNullString(value)
	case ColumnCountry:
		c.Country = NewNullString(value)
	case ColumnNotes:
		c.Notes = NewNullString(value)
	}
}

// ChannelType is the kind of communication channel
type ChannelType int

const (
	ChannelMobile ChannelType = iota
	ChannelPhone
	ChannelEmail
	ChannelSkype
	ChannelWebsite
	ChannelOther
)

// ChannelTypes lists channel types in display order
var ChannelTypes = []ChannelType{
	ChannelMobile,
	ChannelPhone,
	ChannelEmail,
	ChannelSkype,
	ChannelWebsite,
	ChannelOther,
}

func (t ChannelType) String() string {
	switch t {
	case ChannelMobile:
		return "mobile"
	case ChannelPhone:
		return "phone"
	case ChannelEmail:
		return "email"
	case ChannelSkype:
		return "skype"
	case ChannelWebsite:
		return "website"
	default:
		return "other"
	}
}

// ParseChannelType maps a channel type name back to its value
func ParseChannelType(s string) (ChannelType, error) {
	for _, t := range ChannelTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return ChannelOther, fmt.Errorf("unknown channel type %q", s)
}

// Channel is a contact method that belongs to a contact
type Channel struct {
	ID         int64
	ContactID  int64
	Type       ChannelType
	Value      string
	Verified   bool
	VerifiedAt sql.NullTime
	CreatedAt  time.Time
}

// IntentTypes lists the kinds of intent a contact can have
var IntentTypes = []string{
	"sale",
	"purchase",
	"support",
	"meeting",
	"other",
}

// IntentStates lists the lifecycle states of an intent
var IntentStates = []string{
	"open",
	"in-progress",
	"done",
	"cancelled",
}

// Intent is a follow-up or piece of business tracked for a contact
type Intent struct {
	ID        int64
	ContactID int64
	Type      string
	State     string
	Abstract  string
	Notes     sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNullString creates a sql.NullString from a string
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
