package selection

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/crm-tui/internal/actions"
	"github.com/pdxmph/crm-tui/internal/binding"
	"github.com/pdxmph/crm-tui/internal/db"
	"github.com/pdxmph/crm-tui/internal/models"
)

func newTestSynchronizer(t *testing.T) (*Synchronizer, *db.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	require.NoError(t, db.Initialize(path))
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	s := New(
		models.NewContactsModel(database),
		models.NewPersonsModel(database),
		models.NewChannelsModel(database),
		models.NewIntentsModel(database),
		nil,
	)
	require.NoError(t, s.Start())
	return s, database
}

// seed creates Acme (a company with two persons) and Dana (an individual)
func seed(t *testing.T, database *db.DB) (acme, dana, ann, bob int64) {
	t.Helper()
	var err error
	acme, err = database.AddContact(db.Contact{Type: db.ContactCorporation, Name: "Acme", City: db.NewNullString("Oslo"), Notes: db.NewNullString("acme notes")})
	require.NoError(t, err)
	dana, err = database.AddContact(db.Contact{Type: db.ContactIndividual, Name: "Dana", City: db.NewNullString("Bergen")})
	require.NoError(t, err)

	parent := db.Contact{ParentID: sql.NullInt64{Int64: acme, Valid: true}, Type: db.ContactIndividual}
	parent.Name, parent.Notes, parent.City = "Ann", db.NewNullString("ann notes"), db.NewNullString("Trondheim")
	ann, err = database.AddContact(parent)
	require.NoError(t, err)
	parent.Name, parent.Notes, parent.City = "Bob", db.NewNullString(""), db.NewNullString("")
	bob, err = database.AddContact(parent)
	require.NoError(t, err)

	_, err = database.AddChannel(db.Channel{ContactID: acme, Type: db.ChannelWebsite, Value: "https://acme.example"})
	require.NoError(t, err)
	_, err = database.AddChannel(db.Channel{ContactID: ann, Type: db.ChannelEmail, Value: "ann@acme.example"})
	require.NoError(t, err)
	return acme, dana, ann, bob
}

func TestStartSelectsNothing(t *testing.T) {
	s, _ := newTestSynchronizer(t)

	assert.Equal(t, -1, s.CurrentContact())
	assert.Equal(t, int64(0), s.CurrentEntityID())
	assert.True(t, s.Form().ReadOnly())
	assert.False(t, s.PersonsVisible())
	assert.Nil(t, s.Form().Who())
}

func TestCorporationShowsPersons(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, dana, _, _ := seed(t, database)
	require.NoError(t, s.Contacts().Select())

	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))
	assert.True(t, s.PersonsVisible())
	assert.Equal(t, acme, s.Persons().Parent())
	assert.Equal(t, 2, s.Persons().Len())
	assert.Equal(t, acme, s.CurrentEntityID())
	assert.Equal(t, acme, s.Channels().Contact())
	assert.Equal(t, acme, s.Intents().Contact())
	assert.Equal(t, "Oslo", s.Form().Value(binding.FieldCity))
	assert.Equal(t, "acme notes", s.Form().Value(binding.FieldNotes))
	assert.False(t, s.Form().ReadOnly())

	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(dana)))
	assert.False(t, s.PersonsVisible())
	assert.Equal(t, models.NoContact, s.Persons().Parent())
	assert.Equal(t, 0, s.Persons().Len())
	assert.Equal(t, dana, s.CurrentEntityID())
	assert.Equal(t, "Bergen", s.Form().Value(binding.FieldCity))
}

func TestSelectingPersonRebindsToPerson(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, _, ann, _ := seed(t, database)
	require.NoError(t, s.Contacts().Select())
	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))

	require.NoError(t, s.ClickPerson(s.Persons().RowOf(ann)))
	assert.True(t, s.PersonBound())
	assert.Equal(t, ann, s.CurrentEntityID())
	assert.Equal(t, ann, s.Channels().Contact())
	assert.Equal(t, ann, s.Intents().Contact())
	assert.Equal(t, "Trondheim", s.Form().Value(binding.FieldCity))
	assert.Equal(t, "ann notes", s.Form().Value(binding.FieldPersonNotes))
	assert.Equal(t, "acme notes", s.Form().Value(binding.FieldNotes), "notes stay with the company")
	require.NotNil(t, s.Form().Who())
	assert.Equal(t, "Ann", s.Form().Who().Name)

	ch, ok := s.Channels().Row(0)
	require.True(t, ok)
	assert.Equal(t, "ann@acme.example", ch.Value)
}

func TestSecondClickRevertsToCompany(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, _, ann, _ := seed(t, database)
	require.NoError(t, s.Contacts().Select())
	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))

	row := s.Persons().RowOf(ann)
	require.NoError(t, s.ClickPerson(row))
	require.True(t, s.PersonBound())

	require.NoError(t, s.ClickPerson(row))
	assert.False(t, s.PersonBound())
	assert.Equal(t, -1, s.CurrentPerson())
	assert.Equal(t, acme, s.CurrentEntityID())
	assert.Equal(t, acme, s.Channels().Contact())
	assert.Equal(t, "Oslo", s.Form().Value(binding.FieldCity))
	assert.False(t, s.Form().Bound(binding.FieldPersonNotes))
	assert.Equal(t, "", s.Form().Value(binding.FieldPersonNotes))

	// A third click selects again
	require.NoError(t, s.ClickPerson(row))
	assert.True(t, s.PersonBound())
}

func TestClickingAnotherPersonSwitches(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, _, ann, bob := seed(t, database)
	require.NoError(t, s.Contacts().Select())
	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))

	require.NoError(t, s.ClickPerson(s.Persons().RowOf(ann)))
	require.NoError(t, s.ClickPerson(s.Persons().RowOf(bob)))
	assert.Equal(t, bob, s.CurrentEntityID())
	assert.Equal(t, "", s.Form().Value(binding.FieldCity))
}

func TestChangingCompanyClearsPerson(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, dana, ann, _ := seed(t, database)
	require.NoError(t, s.Contacts().Select())
	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))
	require.NoError(t, s.ClickPerson(s.Persons().RowOf(ann)))

	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(dana)))
	assert.False(t, s.PersonBound())
	assert.Equal(t, -1, s.CurrentPerson())
	assert.Equal(t, dana, s.Channels().Contact())
	assert.Equal(t, "Bergen", s.Form().Value(binding.FieldCity))
}

func TestDeletingOnlyContactClearsBindings(t *testing.T) {
	s, _ := newTestSynchronizer(t)

	require.NoError(t, s.CreateContact(db.ContactIndividual, "Solo"))
	require.Equal(t, 0, s.CurrentContact())
	require.NoError(t, s.AddChannel(db.ChannelPhone, "555-0100"))
	require.Equal(t, 1, s.Channels().Len())

	require.NoError(t, s.DeleteContact())
	assert.Equal(t, 0, s.Contacts().Len())
	assert.Equal(t, -1, s.CurrentContact())
	assert.Equal(t, int64(0), s.CurrentEntityID())
	assert.Equal(t, models.NoContact, s.Channels().Contact())
	assert.Equal(t, models.NoContact, s.Intents().Contact())
	assert.Equal(t, 0, s.Channels().Len())
	assert.True(t, s.Form().ReadOnly())
	assert.Nil(t, s.Form().Who())
	assert.False(t, s.Form().SetValue(binding.FieldCity, "x"))

	a := actions.Validate(s.ActionState(actions.ModeContacts, actions.TabContact))
	assert.False(t, a.DeleteContact)
	assert.False(t, a.AddChannel)
}

func TestEditsSurviveRebind(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, dana, ann, _ := seed(t, database)
	require.NoError(t, s.Contacts().Select())
	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))

	require.True(t, s.Form().SetValue(binding.FieldCity, "Stavanger"))
	assert.True(t, s.Dirty())

	// Selecting a person submits the company's address first
	require.NoError(t, s.ClickPerson(s.Persons().RowOf(ann)))
	require.True(t, s.Form().SetValue(binding.FieldPersonNotes, "call back"))

	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(dana)))
	assert.False(t, s.Dirty())

	c, err := database.GetContact(acme)
	require.NoError(t, err)
	assert.Equal(t, "Stavanger", c.City.String)

	p, err := database.GetContact(ann)
	require.NoError(t, err)
	assert.Equal(t, "call back", p.Notes.String)
	assert.Equal(t, "Trondheim", p.City.String)
}

func TestFilterKeepsCurrentContact(t *testing.T) {
	s, database := newTestSynchronizer(t)
	acme, dana, _, _ := seed(t, database)
	require.NoError(t, s.Contacts().Select())
	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(dana)))
	require.True(t, s.Form().SetValue(binding.FieldCountry, "Norway"))

	require.NoError(t, s.SetNameFilter("da"))
	assert.Equal(t, 0, s.CurrentContact())
	assert.Equal(t, dana, s.CurrentEntityID())

	require.NoError(t, s.SetNameFilter("ac"))
	assert.Equal(t, -1, s.CurrentContact())
	assert.True(t, s.Form().ReadOnly())

	c, err := database.GetContact(dana)
	require.NoError(t, err)
	assert.Equal(t, "Norway", c.Country.String, "edits are submitted before the filter hides the contact")

	require.NoError(t, s.SetCurrentContact(s.Contacts().RowOf(acme)))
	assert.Equal(t, acme, s.CurrentEntityID())
}

func TestCreateContactClearsFilter(t *testing.T) {
	s, database := newTestSynchronizer(t)
	seed(t, database)
	require.NoError(t, s.SetNameFilter("zzz"))
	require.Equal(t, 0, s.Contacts().Len())

	require.NoError(t, s.CreateContact(db.ContactCorporation, "Globex"))
	assert.Equal(t, "", s.Contacts().NameFilter())
	assert.Equal(t, 3, s.Contacts().Len())
	c, ok := s.Contacts().Row(s.CurrentContact())
	require.True(t, ok)
	assert.Equal(t, "Globex", c.Name)
	assert.True(t, s.PersonsVisible())
}

func TestPersonLifecycle(t *testing.T) {
	s, _ := newTestSynchronizer(t)
	require.NoError(t, s.CreateContact(db.ContactCorporation, "Initech"))

	require.NoError(t, s.AddPerson("Peter", "lead"))
	require.Equal(t, 1, s.Persons().Len())

	require.NoError(t, s.ClickPerson(0))
	require.True(t, s.PersonBound())

	require.NoError(t, s.EditPerson("Peter Gibbons", "active"))
	p, ok := s.Persons().Row(0)
	require.True(t, ok)
	assert.Equal(t, "Peter Gibbons", p.Name)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, "Peter Gibbons", s.Form().Who().Name)

	require.NoError(t, s.DeletePerson())
	assert.Equal(t, 0, s.Persons().Len())
	assert.False(t, s.PersonBound())
	assert.Equal(t, s.Contacts().ID(s.CurrentContact()), s.CurrentEntityID())
}

func TestAddPersonIgnoredForIndividuals(t *testing.T) {
	s, _ := newTestSynchronizer(t)
	require.NoError(t, s.CreateContact(db.ContactIndividual, "Milton"))
	require.NoError(t, s.AddPerson("Nobody", ""))
	assert.Equal(t, 0, s.Persons().Len())
}

func TestChannelCommands(t *testing.T) {
	s, _ := newTestSynchronizer(t)
	require.NoError(t, s.CreateContact(db.ContactIndividual, "Lumbergh"))

	require.NoError(t, s.AddChannel(db.ChannelEmail, "bill@initech.example"))
	require.NoError(t, s.AddChannel(db.ChannelPhone, "555-0199"))
	require.Equal(t, 2, s.Channels().Len())

	s.SetCurrentChannel(0)
	require.NoError(t, s.VerifyChannels(nil))
	ch, ok := s.CurrentChannel()
	require.True(t, ok, "verifying keeps the channel current")
	assert.True(t, ch.Verified)

	require.NoError(t, s.EditChannel(db.ChannelEmail, "lumbergh@initech.example"))
	ch, ok = s.CurrentChannel()
	require.True(t, ok)
	assert.Equal(t, "lumbergh@initech.example", ch.Value)
	assert.False(t, ch.Verified, "a changed value is no longer verified")

	a := actions.Validate(s.ActionState(actions.ModeContacts, actions.TabContact))
	assert.True(t, a.OpenChannel)

	require.NoError(t, s.DeleteChannels([]int{0, 1}))
	assert.Equal(t, 0, s.Channels().Len())
	_, ok = s.CurrentChannel()
	assert.False(t, ok)
}

func TestIntentCommands(t *testing.T) {
	s, _ := newTestSynchronizer(t)
	require.NoError(t, s.CreateContact(db.ContactCorporation, "Chotchkie's"))

	require.NoError(t, s.AddIntent(db.Intent{Type: "sale", Abstract: "Flair supply"}))
	require.Equal(t, 1, s.Intents().Len())

	s.SetCurrentIntent(0)
	in, ok := s.CurrentIntent()
	require.True(t, ok)
	in.State = "done"
	require.NoError(t, s.EditIntent(in))

	in, ok = s.CurrentIntent()
	require.True(t, ok)
	assert.Equal(t, "done", in.State)

	a := actions.Validate(s.ActionState(actions.ModeContacts, actions.TabIntents))
	assert.True(t, a.EditIntent)

	require.NoError(t, s.DeleteIntents(nil))
	assert.Equal(t, 0, s.Intents().Len())
}

func TestSetContactStatus(t *testing.T) {
	s, database := newTestSynchronizer(t)
	require.NoError(t, s.CreateContact(db.ContactIndividual, "Joanna"))
	require.NoError(t, s.SetContactStatus("dormant"))

	c, err := database.GetContact(s.CurrentEntityID())
	require.NoError(t, err)
	assert.Equal(t, "dormant", c.Status)
}
