// Package tasks implements the task list tab: an incrementally rendered
// display of task fragments, a cursor paginator that feeds it, and the
// optimistic status toggler that mutates it.
package tasks

import (
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/render"
)

// Notice texts shown inline in the list.
const (
	NoticeLoading     = "Loading tasks..."
	NoticeLoadingMore = "Loading more tasks..."
	NoticeEmpty       = "No tasks found."
	NoticeEnd         = "No more tasks to load."
	noticeErrorPrefix = "Error loading tasks: "
)

// Notice is a non-task line in the list: a loading indicator, a marker or
// an inline error.
type Notice struct {
	Text    string
	Error   bool
	Loading bool
}

// Item is a rendered task plus the state of its checkbox control.
type Item struct {
	render.Fragment

	Checked  bool   // control state, flips before the server confirms
	Disabled bool   // true while a status request is in flight
	Updating bool   // shows the "Updating..." indicator
	Err      string // inline error from the last failed toggle

	token  uint64 // current removal token; a timer with another token is stale
	serial uint64 // serial of the in-flight status request
	armed  bool   // a removal timer is pending
	rearm  bool   // the in-flight toggle cancelled a pending removal
}

// Entry is one line of the list. Exactly one field is set.
type Entry struct {
	Item   *Item
	Notice *Notice
}

// ToggleHandler is called when a bound control is clicked. It receives the
// control's new checked state.
type ToggleHandler func(id task.ID, checked bool) *StatusRequest

// Display is the task container. It keeps server order, supports full
// replacement and incremental append, and tracks which controls already have
// a handler bound.
type Display struct {
	entries []Entry
	index   map[task.ID]*Item
	bound   map[task.ID]ToggleHandler
}

// NewDisplay returns an empty display.
func NewDisplay() *Display {
	return &Display{
		index: make(map[task.ID]*Item),
		bound: make(map[task.ID]ToggleHandler),
	}
}

// Entries returns the list lines in display order.
func (d *Display) Entries() []Entry { return d.entries }

// Item returns the item for id, or nil when it is not displayed.
func (d *Display) Item(id task.ID) *Item { return d.index[id] }

// Len returns the number of task items, ignoring notices.
func (d *Display) Len() int { return len(d.index) }

// IDs returns the displayed task ids in order.
func (d *Display) IDs() []task.ID {
	ids := make([]task.ID, 0, len(d.index))
	for _, e := range d.entries {
		if e.Item != nil {
			ids = append(ids, e.Item.ID)
		}
	}
	return ids
}

// Replace clears the container and renders tasks in server order. It reports
// false when tasks is empty, in which case the "No tasks found." marker is
// shown and the caller must stop paginating.
func (d *Display) Replace(tasks []task.Task) bool {
	d.clear()
	if len(tasks) == 0 {
		d.addNotice(Notice{Text: NoticeEmpty})
		return false
	}
	for _, t := range tasks {
		d.addTask(t)
	}
	return true
}

// Append adds tasks after the existing fragments. An empty batch always
// reports false; it shows "No tasks found." when the container holds no
// tasks yet and the end marker otherwise. A non-empty final batch gets the
// end marker appended.
func (d *Display) Append(tasks []task.Task, hasMore bool) bool {
	if len(tasks) == 0 {
		if d.Len() == 0 {
			d.clear()
			d.addNotice(Notice{Text: NoticeEmpty})
		} else {
			d.addNotice(Notice{Text: NoticeEnd})
		}
		return false
	}
	for _, t := range tasks {
		d.addTask(t)
	}
	if !hasMore {
		d.addNotice(Notice{Text: NoticeEnd})
	}
	return hasMore
}

// ShowLoading replaces everything with the initial loading indicator.
func (d *Display) ShowLoading() {
	d.clear()
	d.addNotice(Notice{Text: NoticeLoading, Loading: true})
}

// ShowError replaces everything with an inline load error.
func (d *Display) ShowError(msg string) {
	d.clear()
	d.addNotice(Notice{Text: noticeErrorPrefix + msg, Error: true})
}

// AppendLoading adds the trailing "Loading more tasks..." indicator.
func (d *Display) AppendLoading() {
	d.addNotice(Notice{Text: NoticeLoadingMore, Loading: true})
}

// AppendError adds an inline load error after the existing fragments.
func (d *Display) AppendError(msg string) {
	d.addNotice(Notice{Text: noticeErrorPrefix + msg, Error: true})
}

// RemoveLoading drops any loading indicators.
func (d *Display) RemoveLoading() {
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.Notice != nil && e.Notice.Loading {
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept
}

// Remove deletes the fragment for id. It reports whether it was present.
func (d *Display) Remove(id task.ID) bool {
	if _, ok := d.index[id]; !ok {
		return false
	}
	for i, e := range d.entries {
		if e.Item != nil && e.Item.ID == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}
	delete(d.index, id)
	delete(d.bound, id)
	return true
}

// AttachHandlers binds h to every control that has no handler yet and
// returns how many were newly bound. Calling it again on the same set binds
// nothing.
func (d *Display) AttachHandlers(h ToggleHandler) int {
	n := 0
	for id := range d.index {
		if _, ok := d.bound[id]; ok {
			continue
		}
		d.bound[id] = h
		n++
	}
	return n
}

// Bound reports whether the control for id has a handler.
func (d *Display) Bound(id task.ID) bool {
	_, ok := d.bound[id]
	return ok
}

// Click flips the control for id and invokes its handler once. Disabled or
// unknown controls ignore the click and return nil.
func (d *Display) Click(id task.ID) *StatusRequest {
	it := d.index[id]
	if it == nil || it.Disabled {
		return nil
	}
	it.Checked = !it.Checked
	h := d.bound[id]
	if h == nil {
		return nil
	}
	return h(id, it.Checked)
}

func (d *Display) clear() {
	d.entries = nil
	clear(d.index)
	clear(d.bound)
}

func (d *Display) addNotice(n Notice) {
	d.entries = append(d.entries, Entry{Notice: &n})
}

// addTask skips ids that are already displayed so a shifted page boundary
// cannot render a task twice.
func (d *Display) addTask(t task.Task) {
	if _, ok := d.index[t.ID]; ok {
		return
	}
	f := render.Format(t)
	it := &Item{Fragment: f, Checked: f.Completed}
	d.index[t.ID] = it
	d.entries = append(d.entries, Entry{Item: it})
}
