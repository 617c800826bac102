package tui

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/crm-tui/internal/actions"
	"github.com/pdxmph/crm-tui/internal/binding"
	"github.com/pdxmph/crm-tui/internal/channel"
	"github.com/pdxmph/crm-tui/internal/db"
	"github.com/pdxmph/crm-tui/internal/models"
	"github.com/pdxmph/crm-tui/internal/selection"
)

type pane int

const (
	paneContacts pane = iota
	panePersons
	paneDetail
	paneChannels
	paneIntents
)

// Options configures a new Model
type Options struct {
	StartMode actions.Mode
	Logger    *slog.Logger
	// Copier and Opener default to the system clipboard and browser
	Copier channel.Copier
	Opener channel.Opener
}

// panelStats are the counts shown in panel mode
type panelStats struct {
	companies   int
	individuals int
	persons     int
	unverified  int
}

// actionDoneMsg reports the outcome of a copy or open
type actionDoneMsg struct {
	info string
	err  error
}

// Model represents the main application state
type Model struct {
	db     *db.DB
	sync   *selection.Synchronizer
	keys   KeyMap
	logger *slog.Logger
	copier channel.Copier
	opener channel.Opener

	mode    actions.Mode
	tab     actions.Tab
	focus   pane
	enabled actions.Set

	width  int
	height int

	filterMode bool
	filter     textinput.Model

	personCursor int

	// Detail pane editing
	detailCursor int
	editing      bool
	fieldInput   textinput.Model

	// Channels marked for bulk delete/verify, valid for markedFor only
	marked    map[int]bool
	markedFor int64

	statusMode     bool
	statusSelected int

	dialog *dialog

	stats panelStats
	err   error
	info  string
}

// New creates a new application model over database
func New(database *db.DB, opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := selection.New(
		models.NewContactsModel(database),
		models.NewPersonsModel(database),
		models.NewChannelsModel(database),
		models.NewIntentsModel(database),
		logger,
	)
	if err := s.Start(); err != nil {
		return Model{}, fmt.Errorf("loading contacts: %w", err)
	}

	// Setup filter input
	ti := textinput.New()
	ti.Placeholder = "Filter contacts..."
	ti.Width = 30
	ti.CharLimit = 50
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	fi := textinput.New()
	fi.Prompt = ""
	fi.Width = 40
	fi.CharLimit = 500

	m := Model{
		db:         database,
		sync:       s,
		keys:       DefaultKeyMap,
		logger:     logger,
		copier:     opts.Copier,
		opener:     opts.Opener,
		mode:       opts.StartMode,
		filter:     ti,
		fieldInput: fi,
		marked:     make(map[int]bool),
	}
	m.loadStats()
	m.refresh()
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 0 {
			listWidth := m.width / 3
			m.filter.Width = listWidth - 4
			m.fieldInput.Width = m.width - listWidth - 20
		}
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.info = msg.info
		}
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		m.info = ""
		cmd := m.handleKey(msg)
		m.refresh()
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.dialog != nil:
		return m.updateDialog(msg)
	case m.statusMode:
		m.updateStatusSelection(msg)
		return nil
	case m.editing:
		return m.updateFieldEdit(msg)
	case m.filterMode:
		return m.updateFilter(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.fail(m.sync.Submit())
		return tea.Quit
	case key.Matches(msg, m.keys.ModePanel):
		m.setMode(actions.ModePanel)
		return nil
	case key.Matches(msg, m.keys.ModeContact):
		m.setMode(actions.ModeContacts)
		return nil
	}

	if m.mode != actions.ModeContacts {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.NextPane):
		m.cyclePane(1)
		return nil
	case key.Matches(msg, m.keys.PrevPane):
		m.cyclePane(-1)
		return nil
	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		m.switchTab()
		return nil
	case key.Matches(msg, m.keys.Submit):
		m.fail(m.sync.Submit())
		if m.err == nil {
			m.info = "Saved"
		}
		return nil
	case key.Matches(msg, m.keys.Filter):
		m.setFocus(paneContacts)
		m.filterMode = true
		m.filter.Focus()
		return textinput.Blink
	case key.Matches(msg, m.keys.AddContact) && m.enabled.AddContact:
		m.dialog = newDialog(dialogAddContact, "Add contact", newTextField("Name", "", 40))
		return textinput.Blink
	case key.Matches(msg, m.keys.AddCompany) && m.enabled.AddCompany:
		m.dialog = newDialog(dialogAddCompany, "Add company", newTextField("Name", "", 40))
		return textinput.Blink
	}

	switch m.focus {
	case paneContacts:
		return m.updateContactsPane(msg)
	case panePersons:
		return m.updatePersonsPane(msg)
	case paneDetail:
		return m.updateDetailPane(msg)
	case paneChannels:
		return m.updateChannelsPane(msg)
	case paneIntents:
		return m.updateIntentsPane(msg)
	}
	return nil
}

func (m *Model) updateContactsPane(msg tea.KeyMsg) tea.Cmd {
	contacts := m.sync.Contacts()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selectContact(moveCursor(m.sync.CurrentContact(), -1, contacts.Len()))
	case key.Matches(msg, m.keys.Down):
		m.selectContact(moveCursor(m.sync.CurrentContact(), 1, contacts.Len()))
	case key.Matches(msg, m.keys.Home):
		m.selectContact(0)
	case key.Matches(msg, m.keys.End):
		m.selectContact(contacts.Len() - 1)
	case key.Matches(msg, m.keys.Select):
		if m.sync.CurrentContact() >= 0 {
			m.cyclePane(1)
		}
	case key.Matches(msg, m.keys.Delete) && m.enabled.DeleteContact:
		c, _ := contacts.Row(m.sync.CurrentContact())
		what := "with its channels and intents"
		if c.IsCorporation() {
			what = "with its persons, channels and intents"
		}
		m.dialog = newConfirm(dialogDeleteContact, fmt.Sprintf("Delete %s %s?", c.Name, what))
	case key.Matches(msg, m.keys.Status) && m.enabled.SetStatus:
		c, _ := contacts.Row(m.sync.CurrentContact())
		m.statusMode = true
		m.statusSelected = max(indexOf(db.ContactStatuses, c.Status), 0)
	}
	return nil
}

func (m *Model) updatePersonsPane(msg tea.KeyMsg) tea.Cmd {
	persons := m.sync.Persons()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.personCursor = moveCursor(m.personCursor, -1, persons.Len())
	case key.Matches(msg, m.keys.Down):
		m.personCursor = moveCursor(m.personCursor, 1, persons.Len())
	case key.Matches(msg, m.keys.Home):
		m.personCursor = 0
	case key.Matches(msg, m.keys.End):
		m.personCursor = persons.Len() - 1
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Mark):
		m.fail(m.sync.ClickPerson(m.personCursor))
	case key.Matches(msg, m.keys.New) && m.enabled.AddPerson:
		m.dialog = newDialog(dialogAddPerson, "Add person",
			newTextField("Name", "", 40),
			newChoiceField("Status", db.ContactStatuses, db.DefaultStatus),
		)
		return textinput.Blink
	case key.Matches(msg, m.keys.Edit) && m.enabled.EditPerson:
		p, _ := persons.Row(m.sync.CurrentPerson())
		m.dialog = newDialog(dialogEditPerson, "Edit person",
			newTextField("Name", p.Name, 40),
			newChoiceField("Status", db.ContactStatuses, p.Status),
		)
		return textinput.Blink
	case key.Matches(msg, m.keys.Delete) && m.enabled.DeletePerson:
		p, _ := persons.Row(m.sync.CurrentPerson())
		m.dialog = newConfirm(dialogDeletePerson, fmt.Sprintf("Delete %s?", p.Name))
	}
	return nil
}

func (m *Model) updateDetailPane(msg tea.KeyMsg) tea.Cmd {
	fields := m.detailFields()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.detailCursor = moveCursor(m.detailCursor, -1, len(fields))
	case key.Matches(msg, m.keys.Down):
		m.detailCursor = moveCursor(m.detailCursor, 1, len(fields))
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Edit):
		if m.detailCursor >= len(fields) {
			return nil
		}
		form := m.sync.Form()
		f := fields[m.detailCursor]
		if !form.Editable(f) {
			return nil
		}
		m.editing = true
		m.fieldInput.SetValue(form.Value(f))
		m.fieldInput.CursorEnd()
		m.fieldInput.Focus()
		return textinput.Blink
	}
	return nil
}

func (m *Model) updateChannelsPane(msg tea.KeyMsg) tea.Cmd {
	channels := m.sync.Channels()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sync.SetCurrentChannel(moveCursor(m.sync.CurrentChannelRow(), -1, channels.Len()))
	case key.Matches(msg, m.keys.Down):
		m.sync.SetCurrentChannel(moveCursor(m.sync.CurrentChannelRow(), 1, channels.Len()))
	case key.Matches(msg, m.keys.Home):
		m.sync.SetCurrentChannel(0)
	case key.Matches(msg, m.keys.End):
		m.sync.SetCurrentChannel(channels.Len() - 1)
	case key.Matches(msg, m.keys.Mark) && m.enabled.EditChannel:
		row := m.sync.CurrentChannelRow()
		if m.marked[row] {
			delete(m.marked, row)
		} else {
			m.marked[row] = true
		}
		m.sync.SetCurrentChannel(moveCursor(row, 1, channels.Len()))
	case key.Matches(msg, m.keys.New) && m.enabled.AddChannel:
		m.dialog = newDialog(dialogAddChannel, "Add channel",
			newChoiceField("Type", channelTypeNames(), db.ChannelEmail.String()),
			newTextField("Value", "", 40),
		)
		m.dialog.focusField(1)
		return textinput.Blink
	case (key.Matches(msg, m.keys.Edit) || key.Matches(msg, m.keys.Select)) && m.enabled.EditChannel:
		ch, _ := m.sync.CurrentChannel()
		m.dialog = newDialog(dialogEditChannel, "Edit channel",
			newChoiceField("Type", channelTypeNames(), ch.Type.String()),
			newTextField("Value", ch.Value, 40),
		)
		m.dialog.focusField(1)
		return textinput.Blink
	case key.Matches(msg, m.keys.Delete) && (m.enabled.DeleteChannel || len(m.marked) > 0):
		n := len(m.channelRows())
		m.dialog = newConfirm(dialogDeleteChannels, fmt.Sprintf("Delete %d channel(s)?", n))
	case key.Matches(msg, m.keys.Verify) && (m.enabled.VerifyChannel || len(m.marked) > 0):
		m.fail(m.sync.VerifyChannels(m.channelRows()))
		m.clearMarks()
	case key.Matches(msg, m.keys.Copy) && m.enabled.CopyChannel:
		ch, _ := m.sync.CurrentChannel()
		return copyCmd(ch, m.copier)
	case key.Matches(msg, m.keys.Open) && m.enabled.OpenChannel:
		ch, _ := m.sync.CurrentChannel()
		return openCmd(ch, m.opener)
	}
	return nil
}

func (m *Model) updateIntentsPane(msg tea.KeyMsg) tea.Cmd {
	intents := m.sync.Intents()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sync.SetCurrentIntent(moveCursor(m.sync.CurrentIntentRow(), -1, intents.Len()))
	case key.Matches(msg, m.keys.Down):
		m.sync.SetCurrentIntent(moveCursor(m.sync.CurrentIntentRow(), 1, intents.Len()))
	case key.Matches(msg, m.keys.Home):
		m.sync.SetCurrentIntent(0)
	case key.Matches(msg, m.keys.End):
		m.sync.SetCurrentIntent(intents.Len() - 1)
	case key.Matches(msg, m.keys.New) && m.enabled.AddIntent:
		m.dialog = intentDialog(dialogAddIntent, "Add intent", db.Intent{Type: "other", State: "open"})
		return textinput.Blink
	case (key.Matches(msg, m.keys.Edit) || key.Matches(msg, m.keys.Select)) && m.enabled.EditIntent:
		in, _ := m.sync.CurrentIntent()
		m.dialog = intentDialog(dialogEditIntent, "Edit intent", in)
		return textinput.Blink
	case key.Matches(msg, m.keys.Delete) && m.enabled.DeleteIntent:
		in, _ := m.sync.CurrentIntent()
		m.dialog = newConfirm(dialogDeleteIntent, fmt.Sprintf("Delete intent %q?", in.Abstract))
	}
	return nil
}

func intentDialog(kind dialogKind, title string, in db.Intent) *dialog {
	d := newDialog(kind, title,
		newChoiceField("Type", db.IntentTypes, in.Type),
		newChoiceField("State", db.IntentStates, in.State),
		newTextField("Abstract", in.Abstract, 40),
		newTextField("Notes", in.Notes.String, 40),
	)
	d.focusField(2)
	return d
}

func (m *Model) updateDialog(msg tea.KeyMsg) tea.Cmd {
	result, cmd := m.dialog.update(msg)
	switch result {
	case dialogCancelled:
		m.dialog = nil
	case dialogAccepted:
		if problem := m.applyDialog(m.dialog); problem != "" {
			m.dialog.err = problem
			return nil
		}
		m.dialog = nil
	}
	return cmd
}

// applyDialog carries out an accepted dialog. It returns a message
// when the input is not acceptable and the dialog should stay open.
func (m *Model) applyDialog(d *dialog) string {
	switch d.kind {
	case dialogAddContact, dialogAddCompany:
		name := d.value("Name")
		if name == "" {
			return "Name is required"
		}
		t := db.ContactIndividual
		if d.kind == dialogAddCompany {
			t = db.ContactCorporation
		}
		m.fail(m.sync.CreateContact(t, name))
		m.setFocus(paneContacts)

	case dialogAddPerson, dialogEditPerson:
		name := d.value("Name")
		if name == "" {
			return "Name is required"
		}
		if d.kind == dialogAddPerson {
			m.fail(m.sync.AddPerson(name, d.value("Status")))
		} else {
			m.fail(m.sync.EditPerson(name, d.value("Status")))
		}

	case dialogAddChannel, dialogEditChannel:
		value := d.value("Value")
		if value == "" {
			return "Value is required"
		}
		t, err := db.ParseChannelType(d.value("Type"))
		if err != nil {
			return err.Error()
		}
		if d.kind == dialogAddChannel {
			m.fail(m.sync.AddChannel(t, value))
		} else {
			m.fail(m.sync.EditChannel(t, value))
		}

	case dialogAddIntent, dialogEditIntent:
		in := db.Intent{
			Type:     d.value("Type"),
			State:    d.value("State"),
			Abstract: d.value("Abstract"),
			Notes:    db.NewNullString(d.value("Notes")),
		}
		if in.Abstract == "" {
			return "Abstract is required"
		}
		if d.kind == dialogAddIntent {
			m.fail(m.sync.AddIntent(in))
		} else {
			m.fail(m.sync.EditIntent(in))
		}

	case dialogDeleteContact:
		m.fail(m.sync.DeleteContact())
		m.setFocus(paneContacts)
	case dialogDeletePerson:
		m.fail(m.sync.DeletePerson())
	case dialogDeleteChannels:
		m.fail(m.sync.DeleteChannels(m.channelRows()))
		m.clearMarks()
	case dialogDeleteIntent:
		m.fail(m.sync.DeleteIntents(nil))
	}
	return ""
}

// updateStatusSelection handles the status picker overlay
func (m *Model) updateStatusSelection(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.statusMode = false
	case "enter":
		m.fail(m.sync.SetContactStatus(db.ContactStatuses[m.statusSelected]))
		m.statusMode = false
	case "j", "down":
		if m.statusSelected < len(db.ContactStatuses)-1 {
			m.statusSelected++
		}
	case "k", "up":
		if m.statusSelected > 0 {
			m.statusSelected--
		}
	}
}

// updateFieldEdit handles keys while a detail field is being edited.
// Enter puts the value into the form; it reaches the store on the next
// rebind, when focus leaves the detail pane or on save.
func (m *Model) updateFieldEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.fieldInput.Blur()
		return nil
	case "enter":
		fields := m.detailFields()
		if m.detailCursor < len(fields) {
			m.sync.Form().SetValue(fields[m.detailCursor], m.fieldInput.Value())
		}
		m.editing = false
		m.fieldInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	return cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		m.filter.Reset()
		m.filter.Blur()
		m.fail(m.sync.SetNameFilter(""))
		return nil
	case "enter":
		m.filterMode = false
		m.filter.Blur()
		return nil
	case "up", "down":
		delta := 1
		if msg.String() == "up" {
			delta = -1
		}
		m.selectContact(moveCursor(m.sync.CurrentContact(), delta, m.sync.Contacts().Len()))
		return nil
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.fail(m.sync.SetNameFilter(m.filter.Value()))
	}
	return cmd
}

func (m *Model) selectContact(row int) {
	m.fail(m.sync.SetCurrentContact(row))
}

func (m *Model) setMode(mode actions.Mode) {
	if mode == m.mode {
		return
	}
	m.fail(m.sync.Submit())
	m.mode = mode
	m.editing = false
	m.filterMode = false
	if mode == actions.ModePanel {
		m.loadStats()
		return
	}
	m.setFocus(paneContacts)
	m.fail(m.sync.Resync())
}

func (m *Model) switchTab() {
	if m.tab == actions.TabContact {
		m.tab = actions.TabIntents
	} else {
		m.tab = actions.TabContact
	}
	if m.focus >= paneDetail {
		m.setFocus(m.panes()[len(m.panes())-1])
	}
}

// panes lists the focusable panes in tab order
func (m Model) panes() []pane {
	p := []pane{paneContacts}
	if m.sync.PersonsVisible() {
		p = append(p, panePersons)
	}
	if m.tab == actions.TabIntents {
		return append(p, paneIntents)
	}
	return append(p, paneDetail, paneChannels)
}

func (m *Model) cyclePane(delta int) {
	panes := m.panes()
	i := indexOf(panes, m.focus)
	m.setFocus(panes[(i+delta+len(panes))%len(panes)])
}

// setFocus moves focus. Leaving the detail pane submits its edits.
func (m *Model) setFocus(p pane) {
	if m.focus == paneDetail && p != paneDetail {
		m.fail(m.sync.Submit())
	}
	m.focus = p
}

// detailFields lists the form fields the detail pane shows, in order
func (m Model) detailFields() []binding.Field {
	fields := append([]binding.Field{}, binding.AddressFields...)
	fields = append(fields, binding.FieldNotes)
	if m.sync.PersonBound() {
		fields = append(fields, binding.FieldPersonNotes)
	}
	return fields
}

// channelRows returns the marked channel rows, or nil to act on the
// current channel
func (m Model) channelRows() []int {
	if len(m.marked) == 0 {
		return nil
	}
	rows := make([]int, 0, len(m.marked))
	for r := range m.marked {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

func (m *Model) clearMarks() {
	m.marked = make(map[int]bool)
}

// refresh recomputes everything derived from the selection
func (m *Model) refresh() {
	m.enabled = actions.Validate(m.sync.ActionState(m.mode, m.tab))

	if n := m.sync.Persons().Len(); m.personCursor >= n {
		m.personCursor = max(n-1, 0)
	}
	if n := len(m.detailFields()); m.detailCursor >= n {
		m.detailCursor = n - 1
	}
	if id := m.sync.Channels().Contact(); id != m.markedFor {
		m.markedFor = id
		m.clearMarks()
	}
	for r := range m.marked {
		if r >= m.sync.Channels().Len() {
			delete(m.marked, r)
		}
	}
	if indexOf(m.panes(), m.focus) < 0 {
		m.focus = paneContacts
	}
}

func (m *Model) loadStats() {
	companies, individuals, persons, err := m.db.CountContacts()
	if err != nil {
		m.fail(err)
		return
	}
	unverified, err := m.db.CountUnverifiedChannels()
	if err != nil {
		m.fail(err)
		return
	}
	m.stats = panelStats{companies: companies, individuals: individuals, persons: persons, unverified: unverified}
}

func (m *Model) fail(err error) {
	if err != nil {
		m.err = err
	}
}

func copyCmd(ch db.Channel, cp channel.Copier) tea.Cmd {
	return func() tea.Msg {
		if err := channel.Copy(ch, cp); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{info: "Copied " + ch.Value}
	}
}

func openCmd(ch db.Channel, open channel.Opener) tea.Cmd {
	return func() tea.Msg {
		if err := channel.Open(ch, open); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{info: "Opened " + ch.Value}
	}
}

func channelTypeNames() []string {
	names := make([]string, len(db.ChannelTypes))
	for i, t := range db.ChannelTypes {
		names[i] = t.String()
	}
	return names
}

// moveCursor moves cursor by delta within n rows. A cursor on no row
// lands on the first one.
func moveCursor(cursor, delta, n int) int {
	if n == 0 {
		return -1
	}
	if cursor < 0 {
		return 0
	}
	cursor += delta
	if cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}
