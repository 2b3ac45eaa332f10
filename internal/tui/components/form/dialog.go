package form

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/tasq/internal/core/styles"
)

// filterer is an optional interface for fields that support list filtering.
type filterer interface {
	IsFiltering() bool
}

// Dialog is a form container that manages focus cycling, validation,
// submission, and cancellation across a set of form fields.
type Dialog struct {
	fields       []Field
	variables    []string // parallel slice: variable name for each field
	rules        map[string]FieldValidation
	errors       map[string]string
	focusedField int
	submitted    bool
	cancelled    bool
	Title        string
}

// NewDialog creates a form dialog with the given fields and variable names.
// The first field is focused automatically.
func NewDialog(title string, fields []Field, variables []string) *Dialog {
	d := &Dialog{
		fields:    fields,
		variables: variables,
		rules:     map[string]FieldValidation{},
		errors:    map[string]string{},
		Title:     title,
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// WithValidation attaches validation rules to the named field.
func (d *Dialog) WithValidation(variable string, v FieldValidation) *Dialog {
	d.rules[variable] = v
	return d
}

// Update handles key input for the dialog, managing focus cycling and submit/cancel.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return d.updateFocusedField(msg)
	}

	switch keyMsg.String() {
	case "tab":
		return d.advanceFocus()
	case "shift+tab":
		return d.retreatFocus()
	case "ctrl+s":
		return d.submit()
	case "enter":
		if d.isTextAreaFocused() {
			// Let textarea handle enter for newline insertion
			return d.updateFocusedField(msg)
		}
		if d.focusedField == len(d.fields)-1 {
			return d.submit()
		}
		return d.advanceFocus()
	case "esc":
		if d.isFocusedFieldFiltering() {
			// Let the field handle esc to exit filter mode
			return d.updateFocusedField(msg)
		}
		d.cancelled = true
		return d, nil
	}

	return d.updateFocusedField(msg)
}

// View renders all fields vertically with spacing, inline errors and help text.
func (d *Dialog) View() string {
	var parts []string
	for i, field := range d.fields {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, field.View())
		if i < len(d.variables) {
			if msg := d.errors[d.variables[i]]; msg != "" {
				parts = append(parts, styles.FormErrorStyle.Render("  "+msg))
			}
		}
	}

	help := styles.FormHelpStyle.Render("tab: next  shift+tab: prev  enter/ctrl+s: submit  esc: cancel")
	parts = append(parts, "", help)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// FormValues returns a map of variable names to field values.
func (d *Dialog) FormValues() map[string]string {
	result := make(map[string]string, len(d.fields))
	for i, field := range d.fields {
		result[d.variables[i]] = field.Value()
	}
	return result
}

// Validate runs every field's rules, records the messages and moves focus to
// the first invalid field. It reports whether all fields passed.
func (d *Dialog) Validate() bool {
	clear(d.errors)
	firstInvalid := -1
	for i, field := range d.fields {
		rule, ok := d.rules[d.variables[i]]
		if !ok {
			continue
		}
		if msg := rule.ValidateText(field.Value()); msg != "" {
			d.errors[d.variables[i]] = msg
			if firstInvalid < 0 {
				firstInvalid = i
			}
		}
	}
	if firstInvalid >= 0 {
		d.focus(firstInvalid)
		return false
	}
	return true
}

// Error returns the validation message recorded for the named field.
func (d *Dialog) Error(variable string) string { return d.errors[variable] }

// Submitted returns whether the form was submitted.
func (d *Dialog) Submitted() bool { return d.submitted }

// Cancelled returns whether the form was cancelled.
func (d *Dialog) Cancelled() bool { return d.cancelled }

// Resume clears the submitted and cancelled flags so the dialog can take
// input again with its current values.
func (d *Dialog) Resume() {
	d.submitted = false
	d.cancelled = false
}

// Reset empties the named fields, clears errors and flags, and focuses the
// first field. Fields not named keep their values.
func (d *Dialog) Reset(variables ...string) tea.Cmd {
	for _, name := range variables {
		for i, v := range d.variables {
			if v != name {
				continue
			}
			if c, ok := d.fields[i].(clearer); ok {
				c.Clear()
			}
		}
	}
	clear(d.errors)
	d.Resume()
	if len(d.fields) == 0 {
		return nil
	}
	return d.focus(0)
}

// SetWidth resizes every field that supports it.
func (d *Dialog) SetWidth(w int) {
	for _, f := range d.fields {
		if s, ok := f.(sizer); ok {
			s.SetWidth(w)
		}
	}
}

func (d *Dialog) submit() (*Dialog, tea.Cmd) {
	if !d.Validate() {
		return d, nil
	}
	d.submitted = true
	return d, nil
}

func (d *Dialog) focus(i int) tea.Cmd {
	if i == d.focusedField && d.fields[i].Focused() {
		return nil
	}
	d.fields[d.focusedField].Blur()
	d.focusedField = i
	return d.fields[i].Focus()
}

func (d *Dialog) advanceFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}
	next := (d.focusedField + 1) % len(d.fields)
	return d, d.focus(next)
}

func (d *Dialog) retreatFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 || d.focusedField == 0 {
		return d, nil
	}
	return d, d.focus(d.focusedField - 1)
}

func (d *Dialog) updateFocusedField(msg tea.Msg) (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	var cmd tea.Cmd
	d.fields[d.focusedField], cmd = d.fields[d.focusedField].Update(msg)
	return d, cmd
}

func (d *Dialog) isTextAreaFocused() bool {
	if len(d.fields) == 0 {
		return false
	}
	_, ok := d.fields[d.focusedField].(*TextAreaField)
	return ok
}

func (d *Dialog) isFocusedFieldFiltering() bool {
	if len(d.fields) == 0 {
		return false
	}
	if f, ok := d.fields[d.focusedField].(filterer); ok {
		return f.IsFiltering()
	}
	return false
}
