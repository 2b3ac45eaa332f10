// Package render converts tasks into display fragments. Fragments carry
// sanitized terminal text and can be written out as escaped HTML.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/hay-kot/tasq/internal/core/task"
)

// DateLayout is how timestamps are shown to the user.
const DateLayout = "Jan 2, 2006 15:04"

// UnknownDate is shown when created_at is missing or unparseable.
const UnknownDate = "Unknown date"

// Fragment is the rendered form of one task.
type Fragment struct {
	ID            task.ID
	Title         string
	Description   string
	Priority      task.Priority
	PriorityLabel string
	Created       string
	Deadline      string // empty when the task has no deadline
	Completed     bool
}

// Format builds the fragment for t. It never fails: unknown priorities and
// bad dates get fallback labels.
func Format(t task.Task) Fragment {
	f := Fragment{
		ID:            t.ID,
		Title:         SanitizeLine(t.Title),
		Description:   Sanitize(t.Description),
		Priority:      t.Priority,
		PriorityLabel: PriorityLabel(t.Priority),
		Created:       UnknownDate,
		Completed:     t.Status.Completed(),
	}

	if t.CreatedAt.Valid() {
		f.Created = t.CreatedAt.Time.Format(DateLayout)
	}

	if t.Deadline != nil && !t.Deadline.IsZero() {
		if t.Deadline.Valid() {
			f.Deadline = t.Deadline.Time.Format(DateLayout)
		} else {
			f.Deadline = SanitizeLine(t.Deadline.Raw)
		}
	}

	return f
}

// PriorityLabel returns the human label for p.
func PriorityLabel(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "🔴 High"
	case task.PriorityMedium:
		return "🟡 Medium"
	case task.PriorityLow:
		return "⚪ Low"
	default:
		return fmt.Sprintf("Priority %d", int(p))
	}
}

// Sanitize removes ANSI escape sequences and control characters other than
// newlines and tabs, so server text cannot drive the terminal.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeLine is Sanitize for single-line fields: newlines and tabs become
// spaces.
func SanitizeLine(s string) string {
	s = Sanitize(s)
	s = strings.NewReplacer("\n", " ", "\t", " ").Replace(s)
	return strings.TrimSpace(s)
}

// Markdown renders the task as a markdown document for the detail view.
// The title is escaped so it cannot inject markup; the description is
// intentionally passed through as markdown.
func Markdown(f Fragment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(f.Title))

	status := "Active"
	if f.Completed {
		status = "Completed"
	}
	fmt.Fprintf(&b, "- **Priority:** %s\n", f.PriorityLabel)
	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	fmt.Fprintf(&b, "- **Created:** %s\n", f.Created)
	if f.Deadline != "" {
		fmt.Fprintf(&b, "- **Deadline:** %s\n", escapeMarkdown(f.Deadline))
	}

	if strings.TrimSpace(f.Description) != "" {
		b.WriteString("\n---\n\n")
		b.WriteString(f.Description)
		b.WriteString("\n")
	}

	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
