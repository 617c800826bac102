package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/crm-tui/internal/actions"
	"github.com/pdxmph/crm-tui/internal/binding"
	"github.com/pdxmph/crm-tui/internal/db"
)

// recorder collects what the model copied and opened
type recorder struct {
	copied []string
	opened []string
}

func newTestModel(t *testing.T, mode actions.Mode) (Model, *db.DB, *recorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	require.NoError(t, db.CreateFixturesDatabase(path))
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	rec := &recorder{}
	model, err := New(database, Options{
		StartMode: mode,
		Copier:    func(s string) error { rec.copied = append(rec.copied, s); return nil },
		Opener:    func(s string) error { rec.opened = append(rec.opened, s); return nil },
	})
	require.NoError(t, err)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), database, rec
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys one by one and returns the model and the last command
func press(model Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = model.Update(keyMsg(k))
		model = updated.(Model)
	}
	return model, cmd
}

func currentName(t *testing.T, model Model) string {
	t.Helper()
	c, ok := model.sync.Contacts().Row(model.sync.CurrentContact())
	require.True(t, ok, "a contact should be current")
	return c.Name
}

func TestPanelMode(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModePanel)

	view := model.View()
	assert.Contains(t, view, "Companies:")
	assert.Equal(t, panelStats{companies: 3, individuals: 2, persons: 3, unverified: model.stats.unverified}, model.stats)
	assert.Greater(t, model.stats.unverified, 0)

	// Contact actions are disabled in panel mode
	model, _ = press(model, "a")
	assert.Nil(t, model.dialog)
	assert.False(t, model.enabled.AddContact)

	model, _ = press(model, "2")
	assert.Equal(t, actions.ModeContacts, model.mode)
	assert.True(t, model.enabled.AddContact)
	assert.Contains(t, model.View(), "Contacts (5)")
}

func TestNavigateToCompanyShowsPersons(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	assert.Equal(t, -1, model.sync.CurrentContact())

	model, _ = press(model, "j")
	assert.Equal(t, "Alex Thompson", currentName(t, model))
	assert.False(t, model.sync.PersonsVisible())
	assert.NotContains(t, model.View(), "Persons (")

	model, _ = press(model, "G")
	assert.Equal(t, "Northwind Traders", currentName(t, model))
	assert.True(t, model.sync.PersonsVisible())

	view := model.View()
	assert.Contains(t, view, "Persons (2)")
	assert.Contains(t, view, "Sarah Chen")
	assert.Contains(t, view, "orders@northwind.example")
}

func TestPersonClickToggles(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "G", "tab")
	require.Equal(t, panePersons, model.focus)
	company := model.sync.CurrentEntityID()

	// Persons: Marcus Williams, Sarah Chen
	model, _ = press(model, "j", "enter")
	require.True(t, model.sync.PersonBound())
	assert.NotEqual(t, company, model.sync.CurrentEntityID())
	assert.Equal(t, 3, model.sync.Channels().Len())
	assert.Contains(t, model.View(), "sarah.chen@northwind.example")
	assert.True(t, model.enabled.EditPerson)

	model, _ = press(model, "enter")
	assert.False(t, model.sync.PersonBound())
	assert.Equal(t, company, model.sync.CurrentEntityID())
	assert.Equal(t, company, model.sync.Channels().Contact())
	assert.False(t, model.enabled.EditPerson)
}

func TestAddContactDialog(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)

	model, _ = press(model, "a")
	require.NotNil(t, model.dialog)
	assert.Contains(t, model.View(), "Add contact")

	// An empty name keeps the dialog open
	model, _ = press(model, "enter")
	require.NotNil(t, model.dialog)
	assert.Equal(t, "Name is required", model.dialog.err)

	model, _ = press(model, "Zed Ortiz", "enter")
	assert.Nil(t, model.dialog)
	assert.Equal(t, 6, model.sync.Contacts().Len())
	assert.Equal(t, "Zed Ortiz", currentName(t, model))

	model, _ = press(model, "A", "Initrode", "enter")
	assert.Equal(t, "Initrode", currentName(t, model))
	assert.True(t, model.sync.PersonsVisible())
}

func TestAddPersonDialog(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "G", "tab", "n")
	require.NotNil(t, model.dialog)

	// Name, then cycle the status choice once: active -> dormant
	model, _ = press(model, "Priya Das", "tab", "l", "enter")
	require.Nil(t, model.dialog)
	require.Equal(t, 3, model.sync.Persons().Len())

	var found bool
	for _, p := range model.sync.Persons().Rows() {
		if p.Name == "Priya Das" {
			found = true
			assert.Equal(t, "dormant", p.Status)
			assert.Equal(t, db.ContactIndividual, p.Type)
		}
	}
	assert.True(t, found)
}

func TestDeleteContactConfirm(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "j", "j", "j", "j")
	require.Equal(t, "Lisa Park", currentName(t, model))

	model, _ = press(model, "d", "n")
	assert.Nil(t, model.dialog)
	assert.Equal(t, 5, model.sync.Contacts().Len())

	model, _ = press(model, "d")
	require.NotNil(t, model.dialog)
	assert.Contains(t, model.View(), "Delete Lisa Park")

	model, _ = press(model, "y")
	assert.Nil(t, model.dialog)
	assert.Equal(t, 4, model.sync.Contacts().Len())
	assert.Equal(t, -1, model.sync.CurrentContact())
	assert.False(t, model.enabled.DeleteContact)
	assert.Contains(t, model.View(), "No contact selected")
}

func TestFilter(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)

	model, _ = press(model, "/", "north")
	assert.True(t, model.filterMode)
	assert.Equal(t, 1, model.sync.Contacts().Len())

	model, _ = press(model, "enter")
	assert.False(t, model.filterMode)
	assert.Equal(t, 1, model.sync.Contacts().Len(), "enter keeps the filter")

	model, _ = press(model, "/", "esc")
	assert.Equal(t, 5, model.sync.Contacts().Len())
	assert.Equal(t, "", model.filter.Value())
}

func TestChannelCopyAndOpen(t *testing.T) {
	model, _, rec := newTestModel(t, actions.ModeContacts)

	// Alex Thompson: mobile, email
	model, _ = press(model, "j", "tab", "tab")
	require.Equal(t, paneChannels, model.focus)

	model, _ = press(model, "j")
	ch, ok := model.sync.CurrentChannel()
	require.True(t, ok)
	assert.Equal(t, db.ChannelMobile, ch.Type)
	assert.False(t, model.enabled.OpenChannel)

	model, cmd := press(model, "o")
	assert.Nil(t, cmd, "phone numbers cannot be opened")

	model, _ = press(model, "j")
	model, cmd = press(model, "y")
	require.NotNil(t, cmd)
	updated, _ := model.Update(cmd())
	model = updated.(Model)
	assert.Equal(t, []string{"alex@thompson.example"}, rec.copied)
	assert.Contains(t, model.info, "Copied")

	_, cmd = press(model, "o")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"mailto:alex@thompson.example"}, rec.opened)
}

func TestChannelAddVerifyDelete(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "j", "tab", "tab")

	model, _ = press(model, "n")
	require.NotNil(t, model.dialog)
	model, _ = press(model, "https://alex.example", "enter")
	require.Nil(t, model.dialog)
	require.Equal(t, 3, model.sync.Channels().Len())

	// Mark the first two rows, then verify them
	model, _ = press(model, "g", "space", "space")
	assert.Len(t, model.marked, 2)
	model, _ = press(model, "v")
	assert.Empty(t, model.marked)
	for _, ch := range model.sync.Channels().Rows()[:2] {
		assert.True(t, ch.Verified, ch.Value)
	}

	model, _ = press(model, "g", "d", "y")
	assert.Equal(t, 2, model.sync.Channels().Len())
}

func TestDetailEditSubmittedOnFocusLeave(t *testing.T) {
	model, database, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "j", "tab")
	require.Equal(t, paneDetail, model.focus)
	id := model.sync.CurrentEntityID()

	// Address, Address 2, City
	model, _ = press(model, "j", "j", "enter")
	require.True(t, model.editing)
	assert.Equal(t, "Seattle", model.fieldInput.Value())

	model, _ = press(model, "ctrl+u", "Tacoma", "enter")
	assert.False(t, model.editing)
	assert.Equal(t, "Tacoma", model.sync.Form().Value(binding.FieldCity))
	assert.True(t, model.sync.Dirty())
	assert.Contains(t, model.View(), "[modified]")

	c, err := database.GetContact(id)
	require.NoError(t, err)
	assert.Equal(t, "Seattle", c.City.String, "not written until focus leaves")

	model, _ = press(model, "tab")
	assert.False(t, model.sync.Dirty())
	c, err = database.GetContact(id)
	require.NoError(t, err)
	assert.Equal(t, "Tacoma", c.City.String)
}

func TestIntentsTab(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "j", "]")
	require.Equal(t, actions.TabIntents, model.tab)
	assert.True(t, model.enabled.AddIntent)
	assert.False(t, model.enabled.AddChannel)
	assert.Contains(t, model.View(), "Invoice correction")

	model, _ = press(model, "tab")
	require.Equal(t, paneIntents, model.focus)

	model, _ = press(model, "n", "Renew contract", "enter")
	require.Nil(t, model.dialog)
	assert.Equal(t, 2, model.sync.Intents().Len())

	model, _ = press(model, "[")
	assert.Equal(t, actions.TabContact, model.tab)
	assert.NotEqual(t, paneIntents, model.focus)
}

func TestStatusPicker(t *testing.T) {
	model, database, _ := newTestModel(t, actions.ModeContacts)
	model, _ = press(model, "j", "s")
	require.True(t, model.statusMode)
	assert.Contains(t, model.View(), "Set status for Alex Thompson")

	model, _ = press(model, "j", "enter")
	assert.False(t, model.statusMode)

	c, err := database.GetContact(model.sync.CurrentEntityID())
	require.NoError(t, err)
	assert.Equal(t, "dormant", c.Status)
}

func TestQuit(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)

	_, cmd := press(model, "q")
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestHelpFollowsEnabledActions(t *testing.T) {
	model, _, _ := newTestModel(t, actions.ModeContacts)
	help := model.renderHelp()
	assert.Contains(t, help, "a/A: add contact/company")
	assert.False(t, strings.Contains(help, "d: delete"))

	model, _ = press(model, "j")
	assert.Contains(t, model.renderHelp(), "d: delete")
}
