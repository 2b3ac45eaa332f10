// Package components provides reusable TUI components.
package components

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/tasq/internal/core/styles"
)

// HelpEntry is one key binding line.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups the bindings of one tab, or the global ones.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

const (
	helpCurrentSuffix = " (this tab)"
	helpFooter        = "esc/? close"
	helpMinKeyWidth   = 8
)

// HelpDialog lists key bindings grouped by tab. The section of the active
// tab is listed first.
type HelpDialog struct {
	title    string
	active   string
	sections []HelpDialogSection
	width    int
	height   int
}

// NewHelpDialog creates a help dialog. active names the section of the tab
// the dialog was opened from; it may be empty.
func NewHelpDialog(title, active string, sections []HelpDialogSection, width, height int) *HelpDialog {
	return &HelpDialog{
		title:    title,
		active:   active,
		sections: orderSections(sections, active),
		width:    width,
		height:   height,
	}
}

func orderSections(sections []HelpDialogSection, active string) []HelpDialogSection {
	out := make([]HelpDialogSection, 0, len(sections))
	for _, s := range sections {
		if s.Title == active && active != "" {
			out = append([]HelpDialogSection{s}, out...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// View renders the dialog. Lines that do not fit the terminal height are
// cut and replaced by an ellipsis line.
func (h *HelpDialog) View() string {
	keyWidth := helpMinKeyWidth
	for _, s := range h.sections {
		for _, e := range s.Entries {
			keyWidth = max(keyWidth, lipgloss.Width(e.Key)+2)
		}
	}

	var lines []string
	for i, s := range h.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if s.Title != "" {
			title := s.Title
			if s.Title == h.active {
				title += helpCurrentSuffix
			}
			lines = append(lines,
				styles.HelpDialogSectionStyle.Render(title),
				styles.TextMutedStyle.Render(strings.Repeat("─", keyWidth+12)))
		}
		for _, e := range s.Entries {
			lines = append(lines, formatKeyDesc(e.Key, e.Desc, keyWidth))
		}
	}

	// title, blank, footer and the modal border and padding
	if budget := h.height - 8; h.height > 0 && len(lines) > budget {
		lines = append(lines[:max(budget-1, 0)], styles.TextMutedStyle.Render("…"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TextForegroundBoldStyle.Render(h.title),
		"",
		strings.Join(lines, "\n"),
		styles.HelpDialogHelpStyle.Render(helpFooter),
	)
	return styles.HelpDialogModalStyle.Render(content)
}

// Overlay centers the dialog over background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	modal := h.View()

	x := max((width-lipgloss.Width(modal))/2, 0)
	y := max((height-lipgloss.Height(modal))/2, 0)

	return lipgloss.NewCompositor(
		lipgloss.NewLayer(background),
		lipgloss.NewLayer(modal).X(x).Y(y).Z(1),
	).Render()
}

func formatKeyDesc(key, desc string, width int) string {
	padded := key + Pad(width-lipgloss.Width(key))
	return styles.TextPrimaryBoldStyle.Render(padded) + styles.TextForegroundStyle.Render(desc)
}
