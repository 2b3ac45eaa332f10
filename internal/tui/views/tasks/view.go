package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/notify"
	"github.com/hay-kot/tasq/internal/core/styles"
	"github.com/hay-kot/tasq/internal/core/task"
)

const (
	wheelStep   = 3
	pageItems   = 5
	indent      = "     "
	helpReserve = 1
)

// Service is the part of the API client the list needs.
type Service interface {
	ListTasks(ctx context.Context, cursor string) (task.Page, error)
	UpdateStatus(ctx context.Context, id task.ID, status task.Status) error
}

// Options tunes the list behavior.
type Options struct {
	ScrollThreshold int           // rows; zero uses DefaultScrollThreshold
	RemovalDelay    time.Duration // zero uses DefaultRemovalDelay
}

type pageLoadedMsg struct{ result PageResult }

type statusUpdatedMsg struct{ result StatusResult }

type removalDueMsg struct{ timer RemovalTimer }

// View is the Bubble Tea sub-model for the task list tab.
type View struct {
	svc     Service
	display *Display
	pager   *Paginator
	toggler *Toggler
	spinner spinner.Model
	detail  *DetailModal
	cursor  int // index into the displayed task ids
	offset  int // first visible row
	width   int
	height  int
}

// New creates the task list view. Nothing is fetched until Reload.
func New(svc Service, opts Options) View {
	d := NewDisplay()
	s := spinner.New()
	s.Spinner = spinner.Dot
	return View{
		svc:     svc,
		display: d,
		pager:   NewPaginator(d, opts.ScrollThreshold),
		toggler: NewToggler(d, opts.RemovalDelay),
		spinner: s,
	}
}

// Reload starts over from the first page. It does nothing while a list
// request is in flight.
func (v *View) Reload() tea.Cmd {
	req := v.pager.ResetAndLoad()
	if req == nil {
		return nil
	}
	v.cursor = 0
	v.offset = 0
	v.detail = nil
	return tea.Batch(v.fetch(*req), v.spinner.Tick)
}

// Abandon drops any in-flight list request so its result is never applied.
func (v *View) Abandon() {
	v.pager.Abandon()
}

// SetSize updates the view dimensions.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.ensureVisible(v.layout())
}

// Resize updates the dimensions and loads more when the list no longer
// fills the viewport.
func (v *View) Resize(width, height int) tea.Cmd {
	v.SetSize(width, height)
	return v.scrollSignal()
}

// Pagination returns the current pagination state.
func (v View) Pagination() State { return v.pager.State() }

// IsDetailOpen reports whether the task detail modal is shown.
func (v View) IsDetailOpen() bool { return v.detail != nil }

// Update handles messages for the task list.
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		return v.handlePageLoaded(msg)
	case statusUpdatedMsg:
		return v.handleStatusUpdated(msg)
	case removalDueMsg:
		return v.handleRemovalDue(msg)
	case spinner.TickMsg:
		if !v.pager.State().IsLoading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.MouseWheelMsg:
		return v.handleWheel(msg)
	case tea.KeyPressMsg:
		if v.detail != nil {
			return v.handleDetailKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

// View renders the visible slice of the list plus a help line.
func (v View) View() string {
	lines, _ := v.layout()
	height := v.listHeight()

	end := min(v.offset+height, len(lines))
	start := min(v.offset, end)
	visible := lines[start:end]

	var b strings.Builder
	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i := len(visible); i < height; i++ {
		b.WriteString("\n")
	}

	b.WriteString(styles.TextMutedStyle.Render("↑/↓ navigate • space toggle • enter details • r reload"))
	return b.String()
}

// Overlay renders the detail modal over background when it is open.
func (v View) Overlay(background string, width, height int) string {
	if v.detail == nil {
		return background
	}
	return v.detail.Overlay(background, width, height)
}

func (v View) handlePageLoaded(msg pageLoadedMsg) (View, tea.Cmd) {
	log := logging.Component("tasks")

	res := msg.result
	if !v.pager.HandlePage(res) {
		log.Debug().
			Uint64("generation", res.Generation).
			Msg("dropping superseded page")
		return v, nil
	}

	if res.Err != nil {
		log.Warn().Err(res.Err).Bool("reset", res.Reset).Msg("load tasks failed")
		v.clampCursor()
		return v, nil
	}

	bound := v.display.AttachHandlers(v.toggler.Toggle)
	log.Debug().
		Int("received", len(res.Page.Tasks)).
		Int("bound", bound).
		Bool("has_more", v.pager.State().HasMore).
		Msg("page applied")

	v.clampCursor()
	// A short first page may not fill the viewport; keep loading until it does.
	return v, v.scrollSignal()
}

func (v View) handleStatusUpdated(msg statusUpdatedMsg) (View, tea.Cmd) {
	res := msg.result
	timer := v.toggler.Resolve(res)

	var cmds []tea.Cmd
	if res.Err != nil {
		log := logging.Component("tasks")
		log.Warn().Err(res.Err).Str("task_id", res.TaskID.String()).Msg("status update failed")
	} else {
		cmds = append(cmds, notifyCmd(notify.New(notify.LevelSuccess,
			fmt.Sprintf("Task %s status updated to %d on server.", res.TaskID, int(res.Status)))))
	}
	if timer != nil {
		t := *timer
		cmds = append(cmds, tea.Tick(t.Delay, func(time.Time) tea.Msg {
			return removalDueMsg{timer: t}
		}))
	}
	return v, tea.Batch(cmds...)
}

func (v View) handleRemovalDue(msg removalDueMsg) (View, tea.Cmd) {
	if !v.toggler.Expire(msg.timer) {
		return v, nil
	}
	v.clampCursor()
	return v, v.scrollSignal()
}

func (v View) handleWheel(msg tea.MouseWheelMsg) (View, tea.Cmd) {
	if v.detail != nil {
		v.detail.UpdateViewport(msg)
		return v, nil
	}
	lines, _ := v.layout()
	switch msg.Mouse().Button {
	case tea.MouseWheelUp:
		v.offset = max(v.offset-wheelStep, 0)
	case tea.MouseWheelDown:
		v.offset = min(v.offset+wheelStep, max(len(lines)-v.listHeight(), 0))
	}
	return v, v.scrollSignal()
}

func (v View) handleDetailKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		v.detail = nil
	case "up", "k":
		v.detail.ScrollUp()
	case "down", "j":
		v.detail.ScrollDown()
	default:
		v.detail.UpdateViewport(msg)
	}
	return v, nil
}

func (v View) handleKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	ids := v.display.IDs()

	switch msg.String() {
	case "up", "k":
		v.cursor = max(v.cursor-1, 0)
	case "down", "j":
		v.cursor = min(v.cursor+1, max(len(ids)-1, 0))
	case "pgup", "ctrl+u":
		v.cursor = max(v.cursor-pageItems, 0)
	case "pgdown", "ctrl+d":
		v.cursor = min(v.cursor+pageItems, max(len(ids)-1, 0))
	case "g", "home":
		v.cursor = 0
	case "G", "end":
		v.cursor = max(len(ids)-1, 0)
	case "space", "x":
		return v.toggleSelected(ids)
	case "r":
		cmd := v.Reload()
		return v, cmd
	case "enter":
		if v.cursor < len(ids) {
			if it := v.display.Item(ids[v.cursor]); it != nil {
				modal := NewDetailModal(it.Fragment, v.width, v.height)
				v.detail = &modal
			}
		}
		return v, nil
	default:
		return v, nil
	}

	v.ensureVisible(v.layout())
	return v, v.scrollSignal()
}

func (v View) toggleSelected(ids []task.ID) (View, tea.Cmd) {
	if v.cursor >= len(ids) {
		return v, nil
	}
	req := v.display.Click(ids[v.cursor])
	if req == nil {
		return v, nil
	}
	return v, v.updateStatus(*req)
}

func (v View) scrollSignal() tea.Cmd {
	lines, _ := v.layout()
	req := v.pager.ScrollSignal(ScrollMetrics{
		Offset:         v.offset,
		ViewportHeight: v.listHeight(),
		ContentHeight:  len(lines),
	})
	if req == nil {
		return nil
	}
	return tea.Batch(v.fetch(*req), v.spinner.Tick)
}

func (v View) fetch(req PageRequest) tea.Cmd {
	svc := v.svc
	return func() tea.Msg {
		ctx := logging.WithOperation(context.Background(), "list_tasks")
		page, err := svc.ListTasks(ctx, req.Cursor)
		return pageLoadedMsg{result: PageResult{
			Generation: req.Generation,
			Reset:      req.Reset,
			Page:       page,
			Err:        err,
		}}
	}
}

func (v View) updateStatus(req StatusRequest) tea.Cmd {
	svc := v.svc
	return func() tea.Msg {
		ctx := logging.WithOperation(context.Background(), "toggle_status")
		err := svc.UpdateStatus(ctx, req.TaskID, req.Status)
		return statusUpdatedMsg{result: StatusResult{
			TaskID: req.TaskID,
			Status: req.Status,
			Serial: req.Serial,
			Err:    err,
		}}
	}
}

func notifyCmd(n notify.Notification) tea.Cmd {
	return func() tea.Msg { return n }
}

func (v *View) clampCursor() {
	n := v.display.Len()
	if v.cursor >= n {
		v.cursor = max(n-1, 0)
	}
	lines, spans := v.layout()
	v.offset = min(v.offset, max(len(lines)-v.listHeight(), 0))
	v.ensureVisible(lines, spans)
}

func (v *View) ensureVisible(lines []string, spans []span) {
	if v.cursor >= len(spans) {
		return
	}
	s := spans[v.cursor]
	height := v.listHeight()
	if s.start < v.offset {
		v.offset = s.start
	} else if s.end > v.offset+height {
		v.offset = s.end - height
	}
	v.offset = max(min(v.offset, max(len(lines)-height, 0)), 0)
}

func (v View) listHeight() int {
	return max(v.height-helpReserve, 1)
}

// span is the half-open row range of one item.
type span struct{ start, end int }

// layout renders every entry into rows and records where each item sits.
func (v View) layout() ([]string, []span) {
	var (
		lines []string
		spans []span
	)
	width := max(v.width-2, 20)
	item := 0

	for _, e := range v.display.Entries() {
		if e.Notice != nil {
			lines = append(lines, v.renderNotice(*e.Notice, width), "")
			continue
		}
		start := len(lines)
		lines = append(lines, renderItem(e.Item, item == v.cursor, width)...)
		spans = append(spans, span{start: start, end: len(lines)})
		lines = append(lines, "")
		item++
	}
	return lines, spans
}

func (v View) renderNotice(n Notice, width int) string {
	text := ansi.Truncate(n.Text, width, "…")
	switch {
	case n.Error:
		return "  " + styles.TaskNoticeErrorStyle.Render(text)
	case n.Loading:
		return "  " + v.spinner.View() + " " + styles.TaskNoticeStyle.Render(text)
	default:
		return "  " + styles.TaskNoticeStyle.Render(text)
	}
}

func renderItem(it *Item, selected bool, width int) []string {
	row := styles.TaskRowStyle
	if selected {
		row = styles.TaskRowSelectedStyle
	}

	box := styles.TaskCheckboxStyle.Render(styles.IconUnchecked)
	switch {
	case it.Disabled:
		box = styles.TaskCheckboxStyle.Render(styles.IconDisabled)
	case it.Checked:
		box = styles.TaskCheckboxDoneStyle.Render(styles.IconChecked)
	}

	titleStyle := styles.TaskTitleStyle
	if it.Completed {
		titleStyle = styles.TaskTitleDoneStyle
	}
	title := ansi.Truncate(it.Title, width-len(indent), "…")

	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(it.Priority)).Render(it.PriorityLabel)
	meta := priority + styles.TaskMetaStyle.Render(" • Created: "+it.Created)
	if it.Deadline != "" {
		meta += styles.TaskMetaStyle.Render(" • Deadline: " + it.Deadline)
	}

	lines := []string{
		box + "  " + titleStyle.Render(title),
		indent + meta,
	}

	if desc := firstLine(it.Description); desc != "" {
		lines = append(lines, indent+styles.TextForegroundStyle.Render(ansi.Truncate(desc, width-len(indent), "…")))
	}
	if it.Updating {
		lines = append(lines, indent+styles.TaskUpdatingStyle.Render(updatingText))
	}
	if it.Err != "" {
		lines = append(lines, indent+styles.TaskErrorStyle.Render(ansi.Truncate(it.Err, width-len(indent), "…")))
	}

	for i, l := range lines {
		lines[i] = row.Render(l)
	}
	return lines
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " …"
	}
	return s
}
