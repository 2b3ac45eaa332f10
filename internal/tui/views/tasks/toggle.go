package tasks

import (
	"time"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/task"
)

// DefaultRemovalDelay is how long a completed task stays visible before it
// is removed from the list.
const DefaultRemovalDelay = 639 * time.Millisecond

const (
	updatingText      = "Updating..."
	toggleErrorPrefix = "Error updating task status: "
)

// StatusRequest is a status update the caller must send to the server.
type StatusRequest struct {
	TaskID   task.ID
	Status   task.Status
	Previous task.Status
	Serial   uint64
}

// StatusResult is the outcome of a StatusRequest.
type StatusResult struct {
	TaskID task.ID
	Status task.Status
	Serial uint64
	Err    error
}

// RemovalTimer asks the caller to call Expire after Delay.
type RemovalTimer struct {
	TaskID task.ID
	Token  uint64
	Delay  time.Duration
}

// Toggler applies status changes optimistically: the control flips at once,
// the fragment is disabled while the request runs, and a failure rolls the
// control back.
type Toggler struct {
	display *Display
	delay   time.Duration
	seq     uint64
}

// NewToggler returns a toggler for d. A delay of zero or less uses
// DefaultRemovalDelay.
func NewToggler(d *Display, delay time.Duration) *Toggler {
	if delay <= 0 {
		delay = DefaultRemovalDelay
	}
	return &Toggler{display: d, delay: delay}
}

// Toggle starts a status change for id after its control was set to
// checked. Any pending removal of the task is cancelled. It returns nil for
// tasks that are not displayed or already updating.
func (t *Toggler) Toggle(id task.ID, checked bool) *StatusRequest {
	it := t.display.Item(id)
	if it == nil || it.Updating {
		return nil
	}

	it.Checked = checked
	it.Disabled = true
	it.Updating = true
	it.Err = ""
	it.token = t.next()
	it.serial = t.next()
	it.rearm = it.armed
	it.armed = false

	return &StatusRequest{
		TaskID:   id,
		Status:   task.StatusFor(checked),
		Previous: task.StatusFor(!checked),
		Serial:   it.serial,
	}
}

// Resolve applies the server's answer to a StatusRequest. On success with
// StatusCompleted it returns the timer that will remove the fragment. A
// failed un-complete that cancelled a pending removal returns a fresh timer.
// Results for fragments that are gone or were re-requested are ignored.
func (t *Toggler) Resolve(res StatusResult) *RemovalTimer {
	it := t.display.Item(res.TaskID)
	if it == nil || it.serial != res.Serial {
		return nil
	}

	it.Disabled = false
	it.Updating = false

	if res.Err != nil {
		prev := task.StatusFor(res.Status != task.StatusCompleted)
		it.Checked = prev.Completed()
		it.Completed = prev.Completed()
		it.Err = toggleErrorPrefix + client.Message(res.Err)
		if !prev.Completed() || !it.rearm {
			return nil
		}
		return t.arm(it)
	}

	it.Err = ""
	if res.Status != task.StatusCompleted {
		it.Completed = false
		return nil
	}

	it.Completed = true
	return t.arm(it)
}

func (t *Toggler) arm(it *Item) *RemovalTimer {
	it.token = t.next()
	it.armed = true
	it.rearm = false
	return &RemovalTimer{TaskID: it.ID, Token: it.token, Delay: t.delay}
}

// Expire removes the fragment a timer was started for. It does nothing when
// the fragment is already gone or the timer was cancelled by a later
// toggle, and reports whether a fragment was removed.
func (t *Toggler) Expire(timer RemovalTimer) bool {
	it := t.display.Item(timer.TaskID)
	if it == nil || it.token != timer.Token {
		return false
	}
	return t.display.Remove(timer.TaskID)
}

func (t *Toggler) next() uint64 {
	t.seq++
	return t.seq
}
