// Package tui implements the Bubble Tea TUI for tasq.
package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/tasq/internal/core/notify"
	"github.com/hay-kot/tasq/internal/core/prefs"
	"github.com/hay-kot/tasq/internal/core/styles"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/tui/components"
	tuinotify "github.com/hay-kot/tasq/internal/tui/notify"
	"github.com/hay-kot/tasq/internal/tui/views/tasks"
)

// Service is the API surface the TUI talks to.
type Service interface {
	tasks.Service
	CreateTask(ctx context.Context, nt task.NewTask) (task.Task, error)
	Logout(ctx context.Context) error
}

// Options configures the TUI.
type Options struct {
	Prefs           prefs.Store // optional; theme and session persistence
	LoginURL        string
	Theme           string
	ScrollThreshold int
	RemovalDelay    time.Duration
	Build           BuildInfo
}

// UIState represents the current modal state of the shell.
type UIState int

const (
	stateNormal UIState = iota
	stateConfirmLogout
	stateShowingHelp
	stateLoggedOut
)

// Model is the root Bubble Tea model.
type Model struct {
	svc   Service
	opts  Options
	keys  keyMap
	state UIState

	activeView ViewType
	tasksView  tasks.View
	addForm    *addForm

	confirm    components.ConfirmModal
	helpDialog *components.HelpDialog
	loggingOut bool

	// Notifications
	notifyBus       *tuinotify.Bus
	toastController *ToastController
	toastView       *ToastView

	theme    string
	width    int
	height   int
	quitting bool
}

// loggedOutMsg is sent when the logout request finishes.
type loggedOutMsg struct {
	err      error
	prefsErr error // the server session ended but the stored one was kept
}

// prefsSavedMsg reports a failed preference write; successes are silent.
type prefsSavedMsg struct {
	err error
}

// New creates a new TUI model.
func New(svc Service, opts Options) Model {
	if opts.Theme == "" {
		opts.Theme = styles.DefaultTheme
	}

	notifyBus := tuinotify.NewBus()
	toastCtrl := NewToastController()
	toastView := NewToastView(toastCtrl)

	// Wire bus -> toast controller
	notifyBus.Subscribe(func(n notify.Notification) {
		toastCtrl.Push(n)
	})

	return Model{
		svc:  svc,
		opts: opts,
		keys: defaultKeyMap(),
		tasksView: tasks.New(svc, tasks.Options{
			ScrollThreshold: opts.ScrollThreshold,
			RemovalDelay:    opts.RemovalDelay,
		}),
		addForm:         newAddForm(),
		notifyBus:       notifyBus,
		toastController: toastCtrl,
		toastView:       toastView,
		theme:           opts.Theme,
		activeView:      ViewTasks,
	}
}

// Init loads the first page of tasks.
func (m Model) Init() tea.Cmd {
	return m.tasksView.Reload()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case toastTickMsg:
		return m.handleToastTick(msg)
	case notify.Notification:
		m.notifyBus.Publish(msg)
		return m, m.ensureToastTick()
	case taskCreatedMsg:
		return m.handleTaskCreated(msg)
	case loggedOutMsg:
		return m.handleLoggedOut(msg)
	case prefsSavedMsg:
		if msg.err != nil {
			return m, m.notifyError("Could not save preferences: %v", msg.err)
		}
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case tea.MouseWheelMsg:
		if m.state != stateNormal || m.activeView != ViewTasks {
			return m, nil
		}
		var cmd tea.Cmd
		m.tasksView, cmd = m.tasksView.Update(msg)
		return m, cmd
	}

	// Async list results, spinner ticks and removal timers must land even
	// while another tab is showing.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.tasksView, cmd = m.tasksView.Update(msg)
	cmds = append(cmds, cmd)
	if m.activeView == ViewAddTask {
		m.addForm.dialog, cmd = m.addForm.dialog.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// ActiveView returns the selected tab.
func (m Model) ActiveView() ViewType { return m.activeView }

// Theme returns the active theme name.
func (m Model) Theme() string { return m.theme }

// ensureToastTick starts the toast countdown when toasts are showing and no
// tick chain is running yet.
func (m *Model) ensureToastTick() tea.Cmd {
	if !m.toastController.HasToasts() || m.toastController.Ticking() {
		return nil
	}
	m.toastController.SetTicking(true)
	return scheduleToastTick()
}

// notifyError publishes an error-level notification and returns a command
// to start the toast tick timer if needed.
func (m *Model) notifyError(format string, args ...any) tea.Cmd {
	m.notifyBus.Errorf(format, args...)
	return m.ensureToastTick()
}

func (m *Model) notifySuccess(format string, args ...any) tea.Cmd {
	m.notifyBus.Successf(format, args...)
	return m.ensureToastTick()
}

// switchTo changes tabs. Entering the Tasks tab always reloads from the
// first page.
func (m *Model) switchTo(v ViewType) tea.Cmd {
	if m.activeView == v {
		return nil
	}
	m.activeView = v
	if v == ViewTasks {
		return m.tasksView.Reload()
	}
	m.addForm.dialog.Resume()
	return nil
}

// toggleTheme flips between the light and dark palettes and persists the
// choice.
func (m *Model) toggleTheme() tea.Cmd {
	name := styles.ToggleName(m.theme)
	palette, ok := styles.GetPalette(name)
	if !ok {
		return m.notifyError("unknown theme %q, available: %v", name, styles.ThemeNames())
	}
	styles.SetTheme(palette)
	m.theme = name
	return m.savePrefs(func(p *prefs.Prefs) { p.Theme = name })
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) tea.Cmd {
	store := m.opts.Prefs
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return prefsSavedMsg{err: store.Update(context.Background(), fn)}
	}
}

func logoutCmd(svc Service, store prefs.Store) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := svc.Logout(ctx); err != nil {
			return loggedOutMsg{err: err}
		}
		if store == nil {
			return loggedOutMsg{}
		}
		err := store.Update(ctx, func(p *prefs.Prefs) { p.Session = prefs.Session{} })
		return loggedOutMsg{prefsErr: err}
	}
}
