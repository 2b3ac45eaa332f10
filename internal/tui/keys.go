package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/hay-kot/tasq/internal/tui/components"
)

// keyMap holds the shell-level bindings. List bindings live in the tasks view
// and are only described here for the help dialog.
type keyMap struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	NextTab    key.Binding
	AddTask    key.Binding
	Theme      key.Binding
	Logout     key.Binding
	Help       key.Binding
	Dismiss    key.Binding
	CloseModal key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
		AddTask:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		Logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Dismiss:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "dismiss toast")),
		CloseModal: key.NewBinding(key.WithKeys("esc", "?", "q")),
	}
}

func entry(b key.Binding) components.HelpEntry {
	h := b.Help()
	return components.HelpEntry{Key: h.Key, Desc: h.Desc}
}

// helpSections describes every binding for the help dialog. Tab sections
// are titled by the tab name so the dialog can put the active one first.
func (k keyMap) helpSections() []components.HelpDialogSection {
	return []components.HelpDialogSection{
		{
			Title: ViewTasks.String(),
			Entries: []components.HelpEntry{
				{Key: "↑/k ↓/j", Desc: "move"},
				{Key: "pgup pgdn", Desc: "page"},
				{Key: "g G", Desc: "top / bottom"},
				{Key: "space x", Desc: "toggle done"},
				{Key: "enter", Desc: "details"},
				{Key: "r", Desc: "reload"},
			},
		},
		{
			Title: ViewAddTask.String(),
			Entries: []components.HelpEntry{
				{Key: "tab", Desc: "next field"},
				{Key: "ctrl+s", Desc: "create"},
				{Key: "esc", Desc: "back to tasks"},
			},
		},
		{
			Title: "Global",
			Entries: []components.HelpEntry{
				entry(k.NextTab),
				entry(k.AddTask),
				entry(k.Theme),
				entry(k.Logout),
				entry(k.Dismiss),
				entry(k.Help),
				entry(k.Quit),
			},
		},
	}
}
