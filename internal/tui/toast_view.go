package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/tasq/internal/core/notify"
	"github.com/hay-kot/tasq/internal/core/styles"
)

// minToastWidth keeps a toast readable on very narrow terminals.
const minToastWidth = 16

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView draws the controller's toasts in the lower-right corner.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View stacks the toasts oldest first, each at most termWidth-2 columns
// wide. A termWidth of zero or less uses the default toast width.
func (v *ToastView) View(termWidth int) string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	width := toastWidth
	if termWidth > 0 {
		width = max(min(toastWidth, termWidth-2), minToastWidth)
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t.notification, width))
	}
	return strings.Join(rendered, "\n")
}

func toastLook(l notify.Level) (string, lipgloss.Style) {
	switch l {
	case notify.LevelError:
		return styles.IconNotifyError, styles.ToastErrorStyle
	case notify.LevelWarning:
		return styles.IconNotifyWarning, styles.ToastWarningStyle
	case notify.LevelSuccess:
		return styles.IconNotifySuccess, styles.ToastSuccessStyle
	default:
		return styles.IconNotifyInfo, styles.ToastInfoStyle
	}
}

func renderToast(n notify.Notification, width int) string {
	icon, style := toastLook(n.Level)
	return style.Width(width).Render(icon + " " + n.Message)
}

// Overlay composites the toasts over background. When the stack is taller
// than the screen the oldest lines are cut so the newest toast stays visible.
func (v *ToastView) Overlay(background string, width, height int) string {
	stack := v.View(width)
	if stack == "" {
		return background
	}

	if lines := strings.Split(stack, "\n"); height > 0 && len(lines) > height {
		stack = strings.Join(lines[len(lines)-height:], "\n")
	}

	x := max(width-lipgloss.Width(stack)-1, 0)
	y := max(height-lipgloss.Height(stack), 0)

	return lipgloss.NewCompositor(
		lipgloss.NewLayer(background),
		lipgloss.NewLayer(stack).X(x).Y(y).Z(2),
	).Render()
}
