package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/notify"
	"github.com/hay-kot/tasq/internal/core/prefs"
	"github.com/hay-kot/tasq/internal/core/styles"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/store/jsonfile"
	"github.com/hay-kot/tasq/internal/testutil/fakeapi"
	"github.com/hay-kot/tasq/pkg/tuitest"
)

// cmdTimeout bounds how long the harness waits for a command. Cursor blinks
// and other timers outlive it and are dropped.
const cmdTimeout = 250 * time.Millisecond

const loginURL = "http://localhost:5000/login"

type harness struct {
	t     *testing.T
	model Model
	srv   *fakeapi.Server
	prefs *jsonfile.PrefsStore
}

func newHarness(t *testing.T, seed int) *harness {
	t.Helper()
	srv := fakeapi.New(t, fakeapi.WithPageSize(10))
	srv.SeedN(seed)

	c, err := client.New(client.Options{BaseURL: srv.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)

	store := jsonfile.NewPrefsStore(filepath.Join(t.TempDir(), "prefs.json"))
	h := &harness{
		t:   t,
		srv: srv,
		model: New(c, Options{
			Prefs:        store,
			LoginURL:     loginURL,
			Theme:        "dark",
			RemovalDelay: time.Millisecond,
		}),
		prefs: store,
	}

	h.send(tuitest.WindowSize(100, 40))
	h.run(h.model.Init())
	return h
}

func execCmd(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := execCmd(next)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, toastTickMsg, tea.QuitMsg:
		default:
			result, out := h.model.Update(msg)
			h.model = result.(Model)
			queue = append(queue, out)
		}
	}
}

func (h *harness) send(msgs ...tea.Msg) {
	h.t.Helper()
	for _, msg := range msgs {
		result, cmd := h.model.Update(msg)
		h.model = result.(Model)
		h.run(cmd)
	}
}

func (h *harness) screen() string {
	return tuitest.StripANSI(h.model.render())
}

func (h *harness) toasts() []string {
	var out []string
	for _, t := range h.model.toastController.Toasts() {
		out = append(out, t.notification.Message)
	}
	return out
}

func (h *harness) count(method string) int {
	n := 0
	for _, r := range h.srv.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func resetTheme(t *testing.T) {
	t.Cleanup(func() {
		p, _ := styles.GetPalette(styles.DefaultTheme)
		styles.SetTheme(p)
	})
}

func TestModel_InitLoadsTasks(t *testing.T) {
	h := newHarness(t, 3)

	out := h.screen()
	assert.Contains(t, out, "Tasks")
	assert.Contains(t, out, "Add Task")
	assert.Contains(t, out, "Task 1")
	assert.Contains(t, out, "Task 3")
	assert.Equal(t, ViewTasks, h.model.ActiveView())
}

func TestModel_TabSwitchReloads(t *testing.T) {
	h := newHarness(t, 2)
	require.Equal(t, 1, h.count("GET"))

	h.send(tuitest.KeyTab())
	assert.Equal(t, ViewAddTask, h.model.ActiveView())
	assert.Contains(t, h.screen(), "Title")

	h.send(tuitest.KeyEsc())
	assert.Equal(t, ViewTasks, h.model.ActiveView())
	assert.Equal(t, 2, h.count("GET"), "entering the list reloads it")
}

func TestModel_CreateTask(t *testing.T) {
	h := newHarness(t, 3)

	h.send(tuitest.KeyPress('a'))
	h.send(tuitest.Type("Buy milk")...)
	h.send(tuitest.KeyCtrl('s'))

	stored, ok := h.srv.Task("4")
	require.True(t, ok)
	assert.Equal(t, "Buy milk", stored.Title)
	assert.Equal(t, task.PriorityLow, stored.Priority)
	assert.Equal(t, task.StatusActive, stored.Status)

	assert.Contains(t, h.screen(), "Task 4 created successfully!")
	assert.Contains(t, h.toasts(), "Task 4 created successfully!")

	values := h.model.addForm.dialog.FormValues()
	assert.Empty(t, values[fieldTitle])
	assert.Equal(t, "3", values[fieldPriority])
	assert.Equal(t, ViewAddTask, h.model.ActiveView(), "stays on the form")
}

func TestModel_CreateTaskRequiresTitle(t *testing.T) {
	h := newHarness(t, 1)

	h.send(tuitest.KeyTab())
	h.send(tuitest.KeyCtrl('s'))

	assert.Zero(t, h.count("POST"))
	assert.Contains(t, h.screen(), "Please enter a task title")
}

func TestModel_CreateTaskInvalidDeadline(t *testing.T) {
	h := newHarness(t, 1)

	h.send(tuitest.KeyTab())
	h.send(tuitest.Type("Ship it")...)
	h.send(tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab())
	h.send(tuitest.Type("someday")...)
	h.send(tuitest.KeyCtrl('s'))

	assert.Zero(t, h.count("POST"))
	assert.Contains(t, h.model.addForm.dialog.Error(fieldDeadline), "invalid deadline")
}

func TestModel_CreateTaskServerError(t *testing.T) {
	h := newHarness(t, 1)
	h.srv.FailNext("POST /api/tasks", fakeapi.Failure{Status: 500, Body: map[string]any{"error": "db down"}})

	h.send(tuitest.KeyTab())
	h.send(tuitest.Type("Buy milk")...)
	h.send(tuitest.KeyCtrl('s'))

	assert.Contains(t, h.screen(), "Error creating task: db down")
	assert.Equal(t, "Buy milk", h.model.addForm.dialog.FormValues()[fieldTitle], "values kept for retry")
	assert.False(t, h.model.addForm.submitting)
}

func TestModel_ToggleCompletesTask(t *testing.T) {
	h := newHarness(t, 2)

	h.send(tuitest.KeySpace())

	stored, ok := h.srv.Task("1")
	require.True(t, ok)
	assert.Equal(t, task.StatusCompleted, stored.Status)
	assert.Contains(t, h.toasts(), "Task 1 status updated to 1 on server.")
}

func TestModel_ThemeTogglePersists(t *testing.T) {
	resetTheme(t)
	h := newHarness(t, 0)

	h.send(tuitest.KeyPress('t'))
	assert.Equal(t, "light", h.model.Theme())
	assert.False(t, styles.CurrentPalette.Dark)

	p, err := h.prefs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "light", p.Theme)

	h.send(tuitest.KeyPress('t'))
	assert.Equal(t, "dark", h.model.Theme())
}

func TestModel_Logout(t *testing.T) {
	h := newHarness(t, 2)
	require.NoError(t, h.prefs.Save(context.Background(), prefs.Prefs{
		Theme:   "dark",
		Session: prefs.Session{Cookie: "abc"},
	}))

	h.send(tuitest.KeyPress('L'))
	assert.Contains(t, h.screen(), "Log out? (y/n)")
	assert.False(t, h.srv.LoggedOut())

	h.send(tuitest.KeyPress('y'))
	require.True(t, h.srv.LoggedOut())

	out := h.screen()
	assert.Contains(t, out, "You have been logged out.")
	assert.Contains(t, out, loginURL)

	p, err := h.prefs.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Session.IsZero())
	assert.Equal(t, "dark", p.Theme)

	h.send(tuitest.KeyPress('r'))
	assert.Equal(t, 1, h.count("GET"), "list keys are inert after logout")
}

func TestModel_LogoutCancelled(t *testing.T) {
	h := newHarness(t, 1)

	h.send(tuitest.KeyPress('L'), tuitest.KeyPress('n'))

	assert.False(t, h.srv.LoggedOut())
	assert.NotContains(t, h.screen(), "Log out? (y/n)")
}

func TestModel_LogoutFailure(t *testing.T) {
	h := newHarness(t, 1)
	h.srv.FailNext("POST /api/auth/logout", fakeapi.Failure{Status: 500})

	h.send(tuitest.KeyPress('L'), tuitest.KeyPress('y'))

	assert.Contains(t, h.toasts(), "Logout failed: Internal Server Error")
	assert.Contains(t, h.screen(), "Task 1")
}

func TestModel_HelpDialog(t *testing.T) {
	h := newHarness(t, 0)

	h.send(tuitest.KeyPress('?'))
	assert.Contains(t, h.screen(), "toggle theme")
	assert.Contains(t, h.screen(), "Tasks (this tab)")

	h.send(tuitest.KeyEsc())
	assert.NotContains(t, h.screen(), "toggle theme")
}

func TestModel_QuitKeys(t *testing.T) {
	h := newHarness(t, 0)

	_, cmd := h.model.Update(tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// q is text inside the form; ctrl+c always quits.
	h.send(tuitest.KeyTab(), tuitest.KeyPress('q'))
	assert.False(t, h.model.quitting)
	assert.Equal(t, "q", h.model.addForm.dialog.FormValues()[fieldTitle])

	_, cmd = h.model.Update(tuitest.KeyCtrl('c'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// stubService fails every write with a canned error.
type stubService struct {
	err error
}

func (s stubService) ListTasks(context.Context, string) (task.Page, error) {
	return task.Page{}, nil
}

func (s stubService) UpdateStatus(context.Context, task.ID, task.Status) error { return s.err }

func (s stubService) CreateTask(context.Context, task.NewTask) (task.Task, error) {
	return task.Task{}, s.err
}

func (s stubService) Logout(context.Context) error { return s.err }

func TestModel_NetworkErrors(t *testing.T) {
	netErr := &client.Error{Kind: client.KindNetwork, Op: "test", Err: errors.New("connection refused")}
	m := New(stubService{err: netErr}, Options{})

	result, _ := m.Update(taskCreatedMsg{err: netErr})
	m = result.(Model)
	assert.Equal(t, "Network error occurred. Please try again.", m.addForm.status)

	result, _ = m.Update(loggedOutMsg{err: netErr})
	m = result.(Model)
	assert.NotEqual(t, stateLoggedOut, m.state)

	var msgs []string
	for _, t := range m.toastController.Toasts() {
		msgs = append(msgs, t.notification.Message)
	}
	assert.Contains(t, msgs, "Network error occurred during logout")
}

func TestModel_ToastTickChain(t *testing.T) {
	m := New(stubService{}, Options{})

	result, cmd := m.Update(notify.New(notify.LevelInfo, "hello"))
	m = result.(Model)
	require.NotNil(t, cmd, "notification starts the tick chain")
	require.True(t, m.toastController.Ticking())

	// A second notification while ticking does not start another chain.
	result, cmd2 := m.Update(notify.New(notify.LevelSuccess, "again"))
	m = result.(Model)
	assert.Nil(t, cmd2)

	ticks := 0
	for cmd != nil {
		result, cmd = m.Update(toastTickMsg(time.Now()))
		m = result.(Model)
		ticks++
		require.Less(t, ticks, 200)
	}

	assert.Equal(t, int(defaultToastTTL/toastTickInterval), ticks)
	assert.False(t, m.toastController.HasToasts())
	assert.False(t, m.toastController.Ticking())
}

func TestModel_DismissToast(t *testing.T) {
	m := New(stubService{}, Options{})
	result, _ := m.Update(notify.New(notify.LevelError, "boom"))
	m = result.(Model)

	result, _ = m.Update(tuitest.KeyCtrl('x'))
	m = result.(Model)
	assert.False(t, m.toastController.HasToasts())
}
