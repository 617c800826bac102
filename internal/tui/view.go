package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pdxmph/crm-tui/internal/actions"
	"github.com/pdxmph/crm-tui/internal/binding"
	"github.com/pdxmph/crm-tui/internal/db"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.dialog != nil {
		return m.renderOverlay(m.dialog.view(), 64)
	}
	if m.statusMode {
		return m.renderOverlay(m.renderStatusSelection(), 0)
	}

	var content string
	if m.mode == actions.ModePanel {
		content = m.renderPanel()
	} else {
		content = m.renderContacts()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusLine(), m.renderHelp())
}

// renderContacts lays out the lists on the left and the tabbed detail
// on the right
func (m Model) renderContacts() string {
	colHeight := m.height - 2
	listWidth := m.width / 3
	detailWidth := m.width - listWidth - 4

	var left string
	if m.sync.PersonsVisible() {
		contactsHeight := (colHeight - 4) * 3 / 5
		personsHeight := colHeight - 4 - contactsHeight
		left = lipgloss.JoinVertical(lipgloss.Left,
			m.renderPane(paneContacts, listWidth, contactsHeight, m.renderContactList(listWidth, contactsHeight)),
			m.renderPane(panePersons, listWidth, personsHeight, m.renderPersonList(listWidth, personsHeight)),
		)
	} else {
		left = m.renderPane(paneContacts, listWidth, colHeight-2, m.renderContactList(listWidth, colHeight-2))
	}

	right := []string{m.renderTabs()}
	if m.tab == actions.TabIntents {
		h := colHeight - 3
		right = append(right, m.renderPane(paneIntents, detailWidth, h, m.renderIntents(detailWidth, h)))
	} else {
		detailHeight := (colHeight - 5) / 2
		channelsHeight := colHeight - 5 - detailHeight
		right = append(right,
			m.renderPane(paneDetail, detailWidth, detailHeight, m.renderDetail(detailWidth, detailHeight)),
			m.renderPane(paneChannels, detailWidth, channelsHeight, m.renderChannels(detailWidth, channelsHeight)),
		)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.JoinVertical(lipgloss.Left, right...))
}

func (m Model) renderPane(p pane, width, height int, content string) string {
	return paneStyle(m.focus == p).
		Width(width).
		Height(height).
		MaxHeight(height + 2).
		Render(content)
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, t := range []actions.Tab{actions.TabContact, actions.TabIntents} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// rowStyle highlights the cursor row, strongly when the pane has focus
func (m Model) rowStyle(p pane, line string) string {
	if m.focus == p {
		return selectedStyle.Render(line)
	}
	return cursorStyle.Render(line)
}

// window returns the first row to show so that cursor stays visible
func window(cursor, visible int) int {
	if visible <= 0 || cursor < visible {
		return 0
	}
	return cursor - visible + 1
}

// renderContactList renders the top-level contact list
func (m Model) renderContactList(width, height int) string {
	var lines []string

	if m.filterMode || m.filter.Value() != "" {
		lines = append(lines, m.filter.View())
		lines = append(lines, "")
		height -= 2
	}

	contacts := m.sync.Contacts()
	current := m.sync.CurrentContact()

	lines = append(lines, fmt.Sprintf("Contacts (%d)", contacts.Len()))
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	visible := height - 2
	start := window(current, visible)
	rows := contacts.Rows()
	for i := start; i < len(rows) && i < start+visible; i++ {
		c := rows[i]

		marker := "  "
		if c.IsCorporation() {
			marker = "◆ "
		}
		line := marker + c.Name
		if c.Status != db.DefaultStatus {
			line += " " + statusStyle.Render(c.Status)
		}
		line = truncate.StringWithTail(line, uint(max(width-1, 1)), "…")

		if i == current {
			line = m.rowStyle(paneContacts, line)
		}
		lines = append(lines, line)
	}

	if contacts.Len() == 0 {
		lines = append(lines, labelStyle.Render("No contacts"))
	}

	return strings.Join(lines, "\n")
}

// renderPersonList renders the persons of the current company
func (m Model) renderPersonList(width, height int) string {
	persons := m.sync.Persons()
	bound := m.sync.CurrentPerson()

	var lines []string
	lines = append(lines, fmt.Sprintf("Persons (%d)", persons.Len()))
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	visible := height - 2
	start := window(m.personCursor, visible)
	rows := persons.Rows()
	for i := start; i < len(rows) && i < start+visible; i++ {
		p := rows[i]
		marker := "  "
		if i == bound {
			marker = "● "
		}
		line := marker + p.Name
		if p.Status != db.DefaultStatus {
			line += " " + statusStyle.Render(p.Status)
		}
		if i == m.personCursor && m.focus == panePersons {
			line = selectedStyle.Render(line)
		} else if i == bound {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if persons.Len() == 0 {
		lines = append(lines, labelStyle.Render("No persons"))
	}

	return strings.Join(lines, "\n")
}

// renderDetail renders the bound entity and its form fields
func (m Model) renderDetail(width, height int) string {
	form := m.sync.Form()
	who := form.Who()
	if who == nil {
		return "No contact selected"
	}

	var lines []string

	header := who.Name + " " + labelStyle.Render("("+who.Type.String()+")")
	if m.sync.PersonBound() {
		if c, ok := m.sync.Contacts().Row(m.sync.CurrentContact()); ok {
			header += labelStyle.Render(" at " + c.Name)
		}
	}
	if m.sync.Dirty() {
		header += " " + statusStyle.Render("[modified]")
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	if c, ok := m.currentEntity(); ok {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-13s", "Status:")), statusStyle.Render(c.Status)))
	}

	for i, f := range m.detailFields() {
		label := labelStyle.Render(fmt.Sprintf("%-13s", binding.Labels[f]+":"))
		if m.focus == paneDetail && i == m.detailCursor {
			label = selectedStyle.Render(fmt.Sprintf("%-13s", binding.Labels[f]+":"))
		}

		if m.editing && i == m.detailCursor {
			lines = append(lines, label+" "+m.fieldInput.View())
			continue
		}

		value := form.Value(f)
		if f == binding.FieldNotes || f == binding.FieldPersonNotes {
			lines = append(lines, label)
			for _, l := range wrapText(value, width-4) {
				lines = append(lines, "  "+l)
			}
			continue
		}
		lines = append(lines, label+" "+value)
	}

	return strings.Join(clip(lines, height), "\n")
}

// currentEntity returns the most specific selected contact row
func (m Model) currentEntity() (db.Contact, bool) {
	if m.sync.PersonBound() {
		return m.sync.Persons().Row(m.sync.CurrentPerson())
	}
	return m.sync.Contacts().Row(m.sync.CurrentContact())
}

// renderChannels renders the channels of the bound entity
func (m Model) renderChannels(width, height int) string {
	channels := m.sync.Channels()
	current := m.sync.CurrentChannelRow()

	header := fmt.Sprintf("Channels (%d)", channels.Len())
	if len(m.marked) > 0 {
		header += labelStyle.Render(fmt.Sprintf(" [%d marked]", len(m.marked)))
	}

	var lines []string
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	visible := height - 2
	start := window(current, visible)
	rows := channels.Rows()
	for i := start; i < len(rows) && i < start+visible; i++ {
		ch := rows[i]
		mark := "  "
		if m.marked[i] {
			mark = "▸ "
		}
		line := fmt.Sprintf("%s%-8s %s", mark, ch.Type, ch.Value)
		if ch.Verified {
			line += " " + verifiedStyle.Render("✓")
		}
		line = truncate.StringWithTail(line, uint(max(width-1, 1)), "…")
		if i == current {
			line = m.rowStyle(paneChannels, line)
		}
		lines = append(lines, line)
	}

	if channels.Len() == 0 && m.sync.CurrentEntityID() != 0 {
		lines = append(lines, labelStyle.Render("No channels"))
	}

	return strings.Join(lines, "\n")
}

// renderIntents renders the intents list and the notes of the current one
func (m Model) renderIntents(width, height int) string {
	intents := m.sync.Intents()
	current := m.sync.CurrentIntentRow()

	var lines []string
	lines = append(lines, fmt.Sprintf("Intents (%d)", intents.Len()))
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	visible := (height - 2) / 2
	start := window(current, visible)
	rows := intents.Rows()
	for i := start; i < len(rows) && i < start+visible; i++ {
		in := rows[i]
		line := fmt.Sprintf("%-9s %-12s %s", in.Type, in.State, in.Abstract)
		line = truncate.StringWithTail(line, uint(max(width-1, 1)), "…")
		if i == current {
			line = m.rowStyle(paneIntents, line)
		}
		lines = append(lines, line)
	}

	if intents.Len() == 0 && m.sync.CurrentEntityID() != 0 {
		lines = append(lines, labelStyle.Render("No intents"))
	}

	if in, ok := m.sync.CurrentIntent(); ok {
		lines = append(lines, "")
		lines = append(lines, labelStyle.Render(fmt.Sprintf("Created %s", in.CreatedAt.Format("2006-01-02"))))
		if in.Notes.Valid && in.Notes.String != "" {
			lines = append(lines, "Notes:")
			lines = append(lines, wrapText(in.Notes.String, width-2)...)
		}
	}

	return strings.Join(clip(lines, height), "\n")
}

// renderPanel renders the overview shown in panel mode
func (m Model) renderPanel() string {
	lines := []string{
		"CRM",
		strings.Repeat("─", 30),
		"",
		fmt.Sprintf("%-22s %d", "Companies:", m.stats.companies),
		fmt.Sprintf("%-22s %d", "Individuals:", m.stats.individuals),
		fmt.Sprintf("%-22s %d", "Persons:", m.stats.persons),
		fmt.Sprintf("%-22s %d", "Unverified channels:", m.stats.unverified),
		"",
		labelStyle.Render("Press 2 to work with contacts"),
	}

	box := borderStyle.Padding(1, 2).Render(strings.Join(lines, "\n"))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}

// renderStatusLine shows the last error or message, or where we are
func (m Model) renderStatusLine() string {
	if m.err != nil {
		return errorStyle.Render(" Error: " + m.err.Error())
	}
	if m.info != "" {
		return infoStyle.Render(" " + m.info)
	}

	crumbs := []string{m.mode.String()}
	if m.mode == actions.ModeContacts {
		if c, ok := m.sync.Contacts().Row(m.sync.CurrentContact()); ok {
			crumbs = append(crumbs, c.Name)
		}
		if p, ok := m.sync.Persons().Row(m.sync.CurrentPerson()); ok && m.sync.PersonBound() {
			crumbs = append(crumbs, p.Name)
		}
	}
	return labelStyle.Render(" " + strings.Join(crumbs, " › "))
}

// renderHelp renders the help line for the enabled actions
func (m Model) renderHelp() string {
	if m.editing {
		return " Enter: keep • Esc: cancel"
	}
	if m.filterMode {
		return " Type to filter • ↑/↓: navigate • Enter: confirm • Esc: clear"
	}
	if m.mode == actions.ModePanel {
		return " " + strings.Join([]string{hint(m.keys.ModeContact), hint(m.keys.Quit)}, " • ")
	}

	parts := []string{"j/k: navigate", hint(m.keys.NextPane), "[/]: tab"}
	a := m.enabled

	switch m.focus {
	case paneContacts:
		parts = append(parts, hint(m.keys.Filter))
		if a.AddContact {
			parts = append(parts, "a/A: add contact/company")
		}
		if a.DeleteContact {
			parts = append(parts, hint(m.keys.Delete))
		}
		if a.SetStatus {
			parts = append(parts, hint(m.keys.Status))
		}
	case panePersons:
		parts = append(parts, "enter: select person")
		if a.AddPerson {
			parts = append(parts, "n: new person")
		}
		if a.EditPerson {
			parts = append(parts, hint(m.keys.Edit), hint(m.keys.Delete))
		}
	case paneDetail:
		parts = append(parts, "enter: edit field", hint(m.keys.Submit))
	case paneChannels:
		if a.AddChannel {
			parts = append(parts, "n: new channel")
		}
		if a.EditChannel {
			parts = append(parts, hint(m.keys.Edit), hint(m.keys.Delete), hint(m.keys.Verify), hint(m.keys.Mark))
		}
		if a.CopyChannel {
			parts = append(parts, hint(m.keys.Copy))
		}
		if a.OpenChannel {
			parts = append(parts, hint(m.keys.Open))
		}
	case paneIntents:
		if a.AddIntent {
			parts = append(parts, "n: new intent")
		}
		if a.EditIntent {
			parts = append(parts, hint(m.keys.Edit), hint(m.keys.Delete))
		}
	}

	parts = append(parts, "1: panel", hint(m.keys.Quit))
	return truncate.String(" "+strings.Join(parts, " • "), uint(max(m.width, 1)))
}

// renderStatusSelection renders the status picker
func (m Model) renderStatusSelection() string {
	c, ok := m.sync.Contacts().Row(m.sync.CurrentContact())
	if !ok {
		return "No contact selected"
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Set status for %s:", c.Name))
	lines = append(lines, "")

	for i, status := range db.ContactStatuses {
		line := fmt.Sprintf("  %s", status)
		if i == m.statusSelected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	lines = append(lines, "Press Enter to confirm, Esc to cancel")
	return strings.Join(lines, "\n")
}

// renderOverlay centers a boxed overlay on the screen
func (m Model) renderOverlay(content string, width int) string {
	style := overlayStyle
	if width > 0 {
		style = style.Width(width)
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(style.Render(content))
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if width <= 0 {
		return []string{text}
	}
	return strings.Split(wordwrap.String(text, width), "\n")
}

// clip keeps at most height lines
func clip(lines []string, height int) []string {
	if height >= 0 && len(lines) > height {
		return lines[:height]
	}
	return lines
}
