package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type dialogKind int

const (
	dialogAddContact dialogKind = iota
	dialogAddCompany
	dialogAddPerson
	dialogEditPerson
	dialogAddChannel
	dialogEditChannel
	dialogAddIntent
	dialogEditIntent
	dialogDeleteContact
	dialogDeletePerson
	dialogDeleteChannels
	dialogDeleteIntent
)

// confirm reports whether the dialog is a yes/no question
func (k dialogKind) confirm() bool {
	return k >= dialogDeleteContact
}

// dialogField is either a text input or a choice cycled with left/right
type dialogField struct {
	label   string
	input   textinput.Model
	choices []string
	choice  int
}

func (f dialogField) isChoice() bool {
	return f.choices != nil
}

func (f dialogField) value() string {
	if f.isChoice() {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

// dialog is a modal overlay collecting a few values
type dialog struct {
	kind    dialogKind
	title   string
	message string
	fields  []dialogField
	focus   int
	err     string
}

func newTextField(label, value string, width int) dialogField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = label
	ti.CharLimit = 200
	ti.Width = width
	ti.SetValue(value)
	return dialogField{label: label, input: ti}
}

func newChoiceField(label string, choices []string, current string) dialogField {
	f := dialogField{label: label, choices: choices}
	for i, c := range choices {
		if c == current {
			f.choice = i
			break
		}
	}
	return f
}

func newDialog(kind dialogKind, title string, fields ...dialogField) *dialog {
	d := &dialog{kind: kind, title: title, fields: fields}
	d.focusField(0)
	return d
}

func newConfirm(kind dialogKind, message string) *dialog {
	return &dialog{kind: kind, title: "Confirm", message: message}
}

// value returns the value of the field with the given label
func (d *dialog) value(label string) string {
	for _, f := range d.fields {
		if f.label == label {
			return f.value()
		}
	}
	return ""
}

func (d *dialog) focusField(i int) {
	if len(d.fields) == 0 {
		return
	}
	if d.focus < len(d.fields) {
		d.fields[d.focus].input.Blur()
	}
	d.focus = (i + len(d.fields)) % len(d.fields)
	if !d.fields[d.focus].isChoice() {
		d.fields[d.focus].input.Focus()
	}
}

type dialogResult int

const (
	dialogOpen dialogResult = iota
	dialogCancelled
	dialogAccepted
)

// update handles a key for the dialog
func (d *dialog) update(msg tea.KeyMsg) (dialogResult, tea.Cmd) {
	if d.kind.confirm() {
		switch msg.String() {
		case "y", "Y", "enter":
			return dialogAccepted, nil
		default:
			return dialogCancelled, nil
		}
	}

	switch msg.String() {
	case "esc":
		return dialogCancelled, nil
	case "enter":
		return dialogAccepted, nil
	case "tab", "down":
		d.focusField(d.focus + 1)
		return dialogOpen, textinput.Blink
	case "shift+tab", "up":
		d.focusField(d.focus - 1)
		return dialogOpen, textinput.Blink
	}

	f := &d.fields[d.focus]
	if f.isChoice() {
		switch msg.String() {
		case "right", "l", " ":
			f.choice = (f.choice + 1) % len(f.choices)
		case "left", "h":
			f.choice = (f.choice - 1 + len(f.choices)) % len(f.choices)
		}
		return dialogOpen, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return dialogOpen, cmd
}

func (d *dialog) view() string {
	var lines []string
	lines = append(lines, d.title)
	lines = append(lines, strings.Repeat("─", 40))
	lines = append(lines, "")

	if d.kind.confirm() {
		lines = append(lines, d.message)
		lines = append(lines, "")
		lines = append(lines, labelStyle.Render("y: confirm • any other key: cancel"))
		return strings.Join(lines, "\n")
	}

	for i, f := range d.fields {
		label := fmt.Sprintf("%-10s", f.label+":")
		var fieldView string
		switch {
		case f.isChoice() && i == d.focus:
			fieldView = selectedStyle.Render(fmt.Sprintf("< %s >", f.value()))
		case f.isChoice():
			fieldView = fmt.Sprintf("  %s  ", f.value())
		case i == d.focus:
			fieldView = f.input.View()
		default:
			fieldView = f.input.Value()
			if fieldView == "" {
				fieldView = labelStyle.Render(f.input.Placeholder)
			}
		}
		lines = append(lines, labelStyle.Render(label)+" "+fieldView)
		lines = append(lines, "")
	}

	if d.err != "" {
		lines = append(lines, errorStyle.Render(d.err))
		lines = append(lines, "")
	}
	lines = append(lines, labelStyle.Render("Tab/↓: next • Shift+Tab/↑: previous • ←/→: change • Enter: save • Esc: cancel"))
	return strings.Join(lines, "\n")
}
