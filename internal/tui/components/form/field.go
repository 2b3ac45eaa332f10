package form

import tea "charm.land/bubbletea/v2"

// Field is the interface implemented by all form field types.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Value() string
	Label() string // Display label for the field
}

// clearer is implemented by fields that can be emptied after a submit.
type clearer interface {
	Clear()
}

// sizer is implemented by fields that follow the dialog width.
type sizer interface {
	SetWidth(w int)
}
