package tui

import (
	"context"
	"fmt"
	"strconv"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/styles"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/core/validate"
	"github.com/hay-kot/tasq/internal/tui/components/form"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldPriority    = "priority"
	fieldDeadline    = "deadline"

	maxFormWidth = 72
)

// taskCreatedMsg carries the result of a create request.
type taskCreatedMsg struct {
	task task.Task
	err  error
}

// addForm is the "Add Task" tab: a form dialog plus the inline status line
// under it.
type addForm struct {
	dialog     *form.Dialog
	status     string
	failed     bool
	submitting bool
}

func newAddForm() *addForm {
	priority := form.NewSelectFormField("Priority", []form.Option{
		{Label: "High", Value: strconv.Itoa(int(task.PriorityHigh))},
		{Label: "Medium", Value: strconv.Itoa(int(task.PriorityMedium))},
		{Label: "Low", Value: strconv.Itoa(int(task.PriorityLow))},
	}, strconv.Itoa(int(task.DefaultPriority)))

	d := form.NewDialog("New Task", []form.Field{
		form.NewTextField("Title", "What needs doing?", ""),
		form.NewTextAreaField("Description", "Details (markdown)", ""),
		priority,
		form.NewTextField("Deadline", "YYYY-MM-DD HH:MM (optional)", ""),
	}, []string{fieldTitle, fieldDescription, fieldPriority, fieldDeadline}).
		WithValidation(fieldTitle, form.FieldValidation{
			Required:        true,
			RequiredMessage: "Please enter a task title",
		}).
		WithValidation(fieldDeadline, form.FieldValidation{
			Check: validate.Deadline,
		})

	return &addForm{dialog: d}
}

// newTask converts the submitted values into a create payload.
func (f *addForm) newTask() (task.NewTask, error) {
	values := f.dialog.FormValues()

	priority, err := task.ParsePriority(values[fieldPriority])
	if err != nil {
		return task.NewTask{}, err
	}
	deadline, err := task.NormalizeDeadline(values[fieldDeadline])
	if err != nil {
		return task.NewTask{}, err
	}

	nt := task.NewTask{
		Title:       values[fieldTitle],
		Description: values[fieldDescription],
		Priority:    priority,
		Status:      task.StatusActive,
		Deadline:    deadline,
	}
	return nt, nt.Validate()
}

// setWidth sizes the fields for a tab of the given width.
func (f *addForm) setWidth(w int) {
	f.dialog.SetWidth(min(max(w-6, 20), maxFormWidth))
}

// created records a successful create and clears everything but the
// priority.
func (f *addForm) created(t task.Task) tea.Cmd {
	f.submitting = false
	f.failed = false
	f.status = fmt.Sprintf("Task %s created successfully!", t.ID)
	return f.dialog.Reset(fieldTitle, fieldDescription, fieldDeadline)
}

// createFailed records a failed create; the values stay for another try.
func (f *addForm) createFailed(err error) {
	f.submitting = false
	f.failed = true
	f.status = createErrorMessage(err)
	f.dialog.Resume()
}

func createErrorMessage(err error) string {
	if client.IsNetwork(err) {
		return "Network error occurred. Please try again."
	}
	return "Error creating task: " + client.Message(err)
}

func (f *addForm) view() string {
	parts := []string{
		styles.FormTitleStyle.Render(f.dialog.Title),
		"",
		f.dialog.View(),
	}

	switch {
	case f.submitting:
		parts = append(parts, "", styles.TaskUpdatingStyle.Render("Creating task..."))
	case f.status != "" && f.failed:
		parts = append(parts, "", styles.TextErrorStyle.Render(f.status))
	case f.status != "":
		parts = append(parts, "", styles.TextSuccessStyle.Render(f.status))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func createTaskCmd(svc Service, nt task.NewTask) tea.Cmd {
	return func() tea.Msg {
		ctx := logging.WithOperation(context.Background(), "create_task")
		created, err := svc.CreateTask(ctx, nt)
		return taskCreatedMsg{task: created, err: err}
	}
}
