package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/tasq/internal/core/styles"
	"github.com/hay-kot/tasq/internal/tui/components"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// render builds the full screen, overlays included.
func (m Model) render() string {
	// Ensure we have dimensions for modals
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	var content string
	switch {
	case m.state == stateLoggedOut:
		content = m.renderLoggedOut(w, h)
	case m.state == stateConfirmLogout:
		content = overlayCenter(m.renderTabView(), styles.ModalStyle.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ModalTitleStyle.Render("Log Out"),
			"",
			m.confirm.View(),
		)), w, h)
	case m.state == stateShowingHelp && m.helpDialog != nil:
		content = m.helpDialog.Overlay(m.renderTabView(), w, h)
	case m.activeView == ViewTasks && m.tasksView.IsDetailOpen():
		content = m.tasksView.Overlay(m.renderTabView(), w, h)
	default:
		content = m.renderTabView()
	}

	// Apply toast overlay on top of everything
	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}
	return content
}

// renderTabView renders the tab-based view layout.
func (m Model) renderTabView() string {
	renderTab := func(view ViewType) string {
		if m.activeView == view {
			return styles.ViewSelectedStyle.Render(view.String())
		}
		return styles.ViewNormalStyle.Render(view.String())
	}

	tabsLeft := strings.Join([]string{renderTab(ViewTasks), renderTab(ViewAddTask)}, " | ")

	// Branding on right with background
	branding := styles.TabBrandingStyle.Render(styles.IconCheckList + " tasq")

	// Layout: [margin] tabs [spacer] branding [margin]
	margin := 1
	tabsWidth := lipgloss.Width(tabsLeft)
	brandingWidth := lipgloss.Width(branding)
	spacerWidth := max(m.width-tabsWidth-brandingWidth-(margin*2), 1)

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		components.Pad(margin), tabsLeft, components.Pad(spacerWidth), branding, components.Pad(margin))

	dividerWidth := m.width
	if dividerWidth < 1 {
		dividerWidth = 80 // default width before WindowSizeMsg
	}
	divider := styles.TextMutedStyle.Render(strings.Repeat("─", dividerWidth))

	contentHeight := max(m.height-chromeHeight, 1)

	var content string
	switch m.activeView {
	case ViewTasks:
		content = m.tasksView.View()
	case ViewAddTask:
		content = lipgloss.NewStyle().Height(contentHeight).Render(m.addForm.view())
	}

	return lipgloss.JoinVertical(lipgloss.Left, divider, header, divider, content)
}

// renderLoggedOut is the screen shown after a successful logout.
func (m Model) renderLoggedOut(w, h int) string {
	lines := []string{
		styles.TextForegroundBoldStyle.Render("You have been logged out."),
		"",
		styles.TextMutedStyle.Render("Sign in again at:"),
		styles.TextPrimaryStyle.Render(m.opts.LoginURL),
		"",
		styles.TextMutedStyle.Render("then run `tasq login` and restart."),
		"",
		styles.ModalHelpStyle.Render("q: quit"),
	}
	box := styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

// overlayCenter composites modal over background, centered.
func overlayCenter(background, modal string, w, h int) string {
	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)
	modalLayer.X((w - lipgloss.Width(modal)) / 2).Y((h - lipgloss.Height(modal)) / 2).Z(1)
	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
