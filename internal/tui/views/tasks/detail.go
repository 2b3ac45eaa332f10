package tasks

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/styles"
	"github.com/hay-kot/tasq/internal/render"
)

const (
	detailMaxWidth  = 90
	detailMaxHeight = 28
	detailMargin    = 4
	detailChrome    = 6
	detailPadding   = 4
)

// DetailModal shows one task with its description rendered as markdown.
type DetailModal struct {
	fragment render.Fragment
	viewport viewport.Model
}

// NewDetailModal builds the modal for f sized to fit width x height.
func NewDetailModal(f render.Fragment, width, height int) DetailModal {
	modalWidth := max(min(width-detailMargin, detailMaxWidth), 20)
	modalHeight := max(min(height-detailMargin, detailMaxHeight), detailChrome+1)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-detailPadding),
		viewport.WithHeight(modalHeight-detailChrome),
	)

	m := DetailModal{fragment: f, viewport: vp}
	m.renderContent(modalWidth - detailPadding)
	return m
}

func (m *DetailModal) renderContent(width int) {
	source := render.Markdown(m.fragment)

	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	log := logging.Component("tasks")
	if err != nil {
		log.Debug().Err(err).Msg("markdown renderer unavailable, showing raw content")
		m.viewport.SetContent(source)
		return
	}

	rendered, err := renderer.Render(source)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed, showing raw content")
		m.viewport.SetContent(source)
		return
	}

	m.viewport.SetContent(strings.Trim(rendered, "\n"))
}

// ID returns the id of the task shown.
func (m *DetailModal) ID() string { return m.fragment.ID.String() }

// ScrollUp scrolls the content up one line.
func (m *DetailModal) ScrollUp() { m.viewport.ScrollUp(1) }

// ScrollDown scrolls the content down one line.
func (m *DetailModal) ScrollDown() { m.viewport.ScrollDown(1) }

// UpdateViewport forwards paging keys and mouse input to the viewport.
func (m *DetailModal) UpdateViewport(msg any) {
	m.viewport, _ = m.viewport.Update(msg)
}

// Overlay renders the modal centered over background.
func (m DetailModal) Overlay(background string, width, height int) string {
	modalWidth := max(min(width-detailMargin, detailMaxWidth), 20)

	scrollInfo := ""
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		scrollInfo = styles.TextMutedStyle.Render(fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render("Task "+m.fragment.ID.String()+scrollInfo),
		"",
		m.viewport.View(),
		styles.ModalHelpStyle.Render("[↑/↓/j/k] scroll  [enter/esc] close"),
	)

	modal := styles.ModalStyle.Width(modalWidth).Render(content)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	centerX := max((width-lipgloss.Width(modal))/2, 0)
	centerY := max((height-lipgloss.Height(modal))/2, 0)
	modalLayer.X(centerX).Y(centerY).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
