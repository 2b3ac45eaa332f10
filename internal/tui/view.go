package tui

const unknownViewType = "unknown"

// ViewType represents which tab is active.
type ViewType int

const (
	ViewTasks ViewType = iota
	ViewAddTask
)

// String returns the tab label.
func (v ViewType) String() string {
	switch v {
	case ViewTasks:
		return "Tasks"
	case ViewAddTask:
		return "Add Task"
	default:
		return unknownViewType
	}
}

// next returns the tab to the right, wrapping around.
func (v ViewType) next() ViewType {
	if v == ViewAddTask {
		return ViewTasks
	}
	return ViewAddTask
}
