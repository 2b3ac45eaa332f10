package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/tui/components"
)

// chromeHeight is the rows taken by the dividers and tab bar.
const chromeHeight = 3

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.addForm.setWidth(msg.Width)
	if m.helpDialog != nil {
		m.helpDialog = m.newHelpDialog()
	}
	return m, m.tasksView.Resize(msg.Width, max(msg.Height-chromeHeight, 1))
}

func (m Model) handleToastTick(_ toastTickMsg) (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

func (m Model) handleTaskCreated(msg taskCreatedMsg) (tea.Model, tea.Cmd) {
	log := logging.Component("tui")

	if msg.err != nil {
		log.Warn().Err(msg.err).Msg("create task failed")
		m.addForm.createFailed(msg.err)
		return m, m.notifyError("%s", m.addForm.status)
	}

	log.Info().Str("task_id", msg.task.ID.String()).Msg("task created")
	cmd := m.addForm.created(msg.task)
	return m, tea.Batch(cmd, m.notifySuccess("%s", m.addForm.status))
}

func (m Model) handleLoggedOut(msg loggedOutMsg) (tea.Model, tea.Cmd) {
	m.loggingOut = false

	if msg.err != nil {
		log := logging.Component("tui")
		log.Warn().Err(msg.err).Msg("logout failed")
		if client.IsNetwork(msg.err) {
			return m, m.notifyError("Network error occurred during logout")
		}
		return m, m.notifyError("Logout failed: %s", client.Message(msg.err))
	}

	m.tasksView.Abandon()
	m.state = stateLoggedOut
	m.helpDialog = nil

	cmds := []tea.Cmd{m.notifySuccess("Logged out")}
	if msg.prefsErr != nil {
		cmds = append(cmds, m.notifyError("Could not clear the stored session: %v", msg.prefsErr))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateShowingHelp:
		if key.Matches(msg, m.keys.CloseModal) {
			m.state = stateNormal
			m.helpDialog = nil
		}
		return m, nil
	case stateConfirmLogout:
		m.confirm, _ = m.confirm.Update(msg)
		switch {
		case m.confirm.Confirmed():
			m.state = stateNormal
			m.loggingOut = true
			return m, logoutCmd(m.svc, m.opts.Prefs)
		case m.confirm.Cancelled():
			m.state = stateNormal
		}
		return m, nil
	case stateLoggedOut:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Dismiss) && m.toastController.HasToasts() {
		m.toastController.Dismiss()
		return m, nil
	}

	if m.activeView == ViewAddTask {
		return m.handleFormKey(msg)
	}

	var cmd tea.Cmd
	if m.tasksView.IsDetailOpen() {
		m.tasksView, cmd = m.tasksView.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab, m.keys.AddTask):
		return m, m.switchTo(m.activeView.next())
	case key.Matches(msg, m.keys.Theme):
		return m, m.toggleTheme()
	case key.Matches(msg, m.keys.Logout):
		if m.loggingOut {
			return m, nil
		}
		m.confirm = components.NewConfirmModal("You will need to log in again to see your tasks.").
			WithPrompt("Log out? (y/n)")
		m.state = stateConfirmLogout
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.helpDialog = m.newHelpDialog()
		m.state = stateShowingHelp
		return m, nil
	}

	m.tasksView, cmd = m.tasksView.Update(msg)
	return m, cmd
}

// handleFormKey routes keys to the add form. Submitting builds the payload
// and sends it; cancelling returns to the task list.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.addForm.submitting {
		return m, nil
	}

	var cmd tea.Cmd
	m.addForm.dialog, cmd = m.addForm.dialog.Update(msg)

	switch {
	case m.addForm.dialog.Cancelled():
		return m, tea.Batch(cmd, m.switchTo(ViewTasks))
	case m.addForm.dialog.Submitted():
		nt, err := m.addForm.newTask()
		if err != nil {
			m.addForm.createFailed(err)
			return m, cmd
		}
		m.addForm.submitting = true
		m.addForm.status = ""
		return m, tea.Batch(cmd, createTaskCmd(m.svc, nt))
	}

	return m, cmd
}

func (m Model) newHelpDialog() *components.HelpDialog {
	title := "tasq"
	if b := m.opts.Build; b.Version != "" {
		title += " " + b.Version
		if c := b.ShortCommit(); c != "" && c != "HEAD" {
			title += " (" + c + ")"
		}
	}
	return components.NewHelpDialog(title, m.activeView.String(), m.keys.helpSections(), m.width, m.height)
}
