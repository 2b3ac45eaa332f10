package components

import (
	"strconv"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tasq/pkg/tuitest"
)

func TestConfirmModal(t *testing.T) {
	tests := []struct {
		name      string
		key       tea.Msg
		confirmed bool
		cancelled bool
	}{
		{"y confirms", tuitest.KeyPress('y'), true, false},
		{"enter confirms", tuitest.KeyEnter(), true, false},
		{"n cancels", tuitest.KeyPress('n'), false, true},
		{"esc cancels", tuitest.KeyEsc(), false, true},
		{"other keys ignored", tuitest.KeyPress('x'), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewConfirmModal("Log out?").Update(tt.key)
			assert.Equal(t, tt.confirmed, m.Confirmed())
			assert.Equal(t, tt.cancelled, m.Cancelled())
		})
	}
}

func TestConfirmModal_View(t *testing.T) {
	out := tuitest.StripANSI(NewConfirmModal("Log out?").WithPrompt("Sure? (y/n)").View())
	assert.Contains(t, out, "Log out?")
	assert.Contains(t, out, "Sure? (y/n)")
	assert.NotContains(t, out, "Continue?")
}

func helpSections() []HelpDialogSection {
	return []HelpDialogSection{
		{Title: "Tasks", Entries: []HelpEntry{{Key: "space", Desc: "toggle"}}},
		{Title: "Add Task", Entries: []HelpEntry{{Key: "ctrl+s", Desc: "create"}}},
		{Title: "Global", Entries: []HelpEntry{{Key: "q", Desc: "quit"}}},
	}
}

func TestHelpDialog_View(t *testing.T) {
	h := NewHelpDialog("Keys", "Tasks", helpSections(), 80, 40)

	out := tuitest.StripANSI(h.View())
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "Tasks (this tab)")
	assert.Contains(t, out, "toggle")
	assert.Less(t, strings.Index(out, "Tasks"), strings.Index(out, "Add Task"))
	assert.Less(t, strings.Index(out, "Add Task"), strings.Index(out, "Global"))
}

func TestHelpDialog_ActiveSectionFirst(t *testing.T) {
	h := NewHelpDialog("Keys", "Add Task", helpSections(), 80, 40)

	out := tuitest.StripANSI(h.View())
	assert.Contains(t, out, "Add Task (this tab)")
	assert.NotContains(t, out, "Tasks (this tab)")
	assert.Less(t, strings.Index(out, "Add Task"), strings.Index(out, "Global"))
	assert.Less(t, strings.Index(out, "Global"), strings.Index(out, "space"))
}

func TestHelpDialog_AlignsLongKeys(t *testing.T) {
	h := NewHelpDialog("Keys", "", []HelpDialogSection{{Entries: []HelpEntry{
		{Key: "ctrl+shift+x", Desc: "long"},
		{Key: "q", Desc: "short"},
	}}}, 80, 40)

	lines := strings.Split(tuitest.StripANSI(h.View()), "\n")
	var long, short int
	for _, l := range lines {
		if i := strings.Index(l, "long"); i >= 0 {
			long = i
		}
		if i := strings.Index(l, "short"); i >= 0 {
			short = i
		}
	}
	require.NotZero(t, long)
	assert.Equal(t, long, short)
}

func TestHelpDialog_ClampsToHeight(t *testing.T) {
	var entries []HelpEntry
	for i := range 30 {
		entries = append(entries, HelpEntry{Key: strconv.Itoa(i), Desc: "binding " + strconv.Itoa(i)})
	}
	h := NewHelpDialog("Keys", "", []HelpDialogSection{{Title: "Many", Entries: entries}}, 80, 20)

	out := tuitest.StripANSI(h.View())
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "binding 29")
	assert.Contains(t, out, "esc/? close")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "", Pad(-1))
	assert.Equal(t, "   ", Pad(3))
	assert.Len(t, Pad(256), 256)
	assert.Len(t, Pad(300), 300)
	assert.Equal(t, strings.Repeat(" ", 300), Pad(300))
}
