package db

import (
	"database/sql"
	"fmt"
)

type fixtureContact struct {
	contact  Contact
	channels []Channel
	intents  []Intent
	persons  []fixtureContact
}

func fixtureChannel(t ChannelType, value string) Channel {
	return Channel{Type: t, Value: value}
}

// CreateFixturesDatabase creates a test database with realistic sample data
func CreateFixturesDatabase(dbPath string) error {
	// Initialize empty database
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	// Open database to add test data
	database, err := Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	fixtures := []fixtureContact{
		// Companies with people
		{
			contact: Contact{
				Type:     ContactCorporation,
				Name:     "Northwind Traders",
				Status:   "active",
				Address1: NewNullString("12 Harbour Road"),
				City:     NewNullString("Portland"),
				PostCode: NewNullString("97201"),
				Country:  NewNullString("USA"),
				Notes:    NewNullString("Long-standing wholesale customer. Orders quarterly."),
			},
			channels: []Channel{
				fixtureChannel(ChannelPhone, "+1 503 555 0100"),
				fixtureChannel(ChannelEmail, "orders@northwind.example"),
				fixtureChannel(ChannelWebsite, "https://northwind.example"),
			},
			intents: []Intent{
				{Type: "sale", State: "in-progress", Abstract: "Q3 restock offer"},
			},
			persons: []fixtureContact{
				{
					contact: Contact{
						Name:     "Sarah Chen",
						Status:   "active",
						Address1: NewNullString("12 Harbour Road, Floor 3"),
						City:     NewNullString("Portland"),
						Country:  NewNullString("USA"),
						Notes:    NewNullString("Purchasing lead. Prefers email."),
					},
					channels: []Channel{
						fixtureChannel(ChannelEmail, "sarah.chen@northwind.example"),
						fixtureChannel(ChannelMobile, "+1 503 555 0101"),
						fixtureChannel(ChannelSkype, "sarah.chen.nw"),
					},
					intents: []Intent{
						{Type: "meeting", State: "open", Abstract: "Walk through new catalogue"},
					},
				},
				{
					contact: Contact{
						Name:   "Marcus Williams",
						Status: "prospect",
						Notes:  NewNullString("Finance. Signs off on larger orders."),
					},
					channels: []Channel{
						fixtureChannel(ChannelPhone, "+1 503 555 0102"),
					},
				},
			},
		},
		{
			contact: Contact{
				Type:    ContactCorporation,
				Name:    "Big Corp Ltd",
				Status:  "prospect",
				City:    NewNullString("London"),
				Country: NewNullString("UK"),
			},
			channels: []Channel{
				fixtureChannel(ChannelEmail, "hello@bigcorp.example"),
				fixtureChannel(ChannelOther, "LinkedIn: Big Corp Ltd"),
			},
			persons: []fixtureContact{
				{
					contact: Contact{
						Name:   "Jennifer Rodriguez",
						Status: "lead",
						Notes:  NewNullString("Met at the trade fair. Interested in API integration."),
					},
					channels: []Channel{
						fixtureChannel(ChannelEmail, "jen.rodriguez@bigcorp.example"),
						fixtureChannel(ChannelOther, "https://linkedin.example/in/jrodriguez"),
					},
				},
			},
		},
		{
			contact: Contact{
				Type:   ContactCorporation,
				Name:   "Design Studio",
				Status: "dormant",
				Notes:  NewNullString("No orders since last year"),
			},
		},

		// Individuals
		{
			contact: Contact{
				Name:    "Alex Thompson",
				Status:  "active",
				City:    NewNullString("Seattle"),
				Country: NewNullString("USA"),
				Notes:   NewNullString("Freelance consultant"),
			},
			channels: []Channel{
				fixtureChannel(ChannelMobile, "+1 206 555 0104"),
				fixtureChannel(ChannelEmail, "alex@thompson.example"),
			},
			intents: []Intent{
				{Type: "support", State: "done", Abstract: "Invoice correction"},
			},
		},
		{
			contact: Contact{
				Name:   "Lisa Park",
				Status: "former",
			},
			channels: []Channel{
				fixtureChannel(ChannelWebsite, "lisapark.example"),
			},
		},
	}

	for _, f := range fixtures {
		if err := database.addFixture(f, sql.NullInt64{}); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) addFixture(f fixtureContact, parent sql.NullInt64) error {
	c := f.contact
	c.ParentID = parent

	id, err := db.AddContact(c)
	if err != nil {
		return fmt.Errorf("adding fixture contact %s: %w", c.Name, err)
	}

	var verify []int64
	for i, ch := range f.channels {
		ch.ContactID = id
		chID, err := db.AddChannel(ch)
		if err != nil {
			return fmt.Errorf("adding channel for %s: %w", c.Name, err)
		}
		// Verify the first channel of every contact
		if i == 0 {
			verify = append(verify, chID)
		}
	}
	if err := db.VerifyChannels(verify); err != nil {
		return fmt.Errorf("verifying channels for %s: %w", c.Name, err)
	}

	for _, in := range f.intents {
		in.ContactID = id
		if _, err := db.AddIntent(in); err != nil {
			return fmt.Errorf("adding intent for %s: %w", c.Name, err)
		}
	}

	for _, p := range f.persons {
		if err := db.addFixture(p, sql.NullInt64{Int64: id, Valid: true}); err != nil {
			return err
		}
	}

	return nil
}
