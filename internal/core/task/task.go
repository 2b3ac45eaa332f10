// Package task defines the task domain model shared by the API client, the
// renderers and the TUI.
package task

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority is the server-defined importance of a task. Lower is more urgent.
type Priority int

const (
	PriorityHigh   Priority = 1 // important and urgent
	PriorityMedium Priority = 2 // important, not urgent
	PriorityLow    Priority = 3 // regular tasks
)

// DefaultPriority is used for new tasks when none is chosen.
const DefaultPriority = PriorityLow

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Name returns the lowercase name used by CLI flags.
func (p Priority) Name() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return strconv.Itoa(int(p))
	}
}

// ParsePriority accepts a priority name or its numeric value.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "1":
		return PriorityHigh, nil
	case "medium", "2":
		return PriorityMedium, nil
	case "low", "3", "":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("invalid priority %q: must be one of high, medium, low", s)
}

// Status is the completion state of a task.
type Status int

const (
	StatusActive    Status = 0
	StatusCompleted Status = 1
	StatusArchived  Status = 2 // server-side only, never sent by the client
)

// StatusFor maps a checkbox state to the status it requests.
func StatusFor(checked bool) Status {
	if checked {
		return StatusCompleted
	}
	return StatusActive
}

// Completed reports whether the status renders as a checked box.
func (s Status) Completed() bool { return s == StatusCompleted }

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusArchived:
		return "archived"
	default:
		return strconv.Itoa(int(s))
	}
}

// ID is an opaque task identifier. The server sends integers; the client
// treats them as text so that any identifier shape round-trips unchanged.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("decode task id: %w", err)
		}
		*id = ID(s)
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return fmt.Errorf("decode task id %s: not a number or string", data)
		}
		*id = ID(data)
	}
	return nil
}

// MarshalJSON writes numeric identifiers as numbers and everything else as
// strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return []byte(strconv.Quote(string(id))), nil
}

// Timestamp is a leniently decoded point in time. Values the client cannot
// parse keep their raw text so renderers can fall back instead of failing.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// timestampLayouts are tried in order. The server emits Python isoformat()
// output (no zone); browsers submit datetime-local values (no seconds).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses s with the lenient layout list. Zone-less values
// are interpreted as UTC.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s}, true
		}
	}
	return Timestamp{Raw: s}, false
}

// Valid reports whether the timestamp parsed to a real time.
func (ts Timestamp) Valid() bool { return !ts.Time.IsZero() }

// IsZero reports whether nothing at all was supplied.
func (ts Timestamp) IsZero() bool { return ts.Time.IsZero() && ts.Raw == "" }

// UnmarshalJSON never fails on malformed text; it records the raw value.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	s := string(data)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*ts, _ = ParseTimestamp(s)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.Valid():
		return []byte(strconv.Quote(ts.Time.Format(time.RFC3339))), nil
	case ts.Raw != "":
		return []byte(strconv.Quote(ts.Raw)), nil
	default:
		return []byte("null"), nil
	}
}

// Task is a server-owned task snapshot.
type Task struct {
	ID          ID         `json:"id"`
	UserID      ID         `json:"user_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Deadline    *Timestamp `json:"deadline,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// Pagination is the cursor metadata returned alongside a page of tasks.
type Pagination struct {
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Cursor returns the next cursor, or "" when the server sent null.
func (p Pagination) Cursor() string {
	if p.NextCursor == nil {
		return ""
	}
	return *p.NextCursor
}

// Page is one response of the list endpoint.
type Page struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// DeadlineLayout is the wire format used when submitting deadlines.
const DeadlineLayout = "2006-01-02T15:04"

// ErrTitleRequired is returned when a new task has a blank title.
var ErrTitleRequired = errors.New("title is required")

// NewTask is the payload for creating a task.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Deadline    string   `json:"deadline,omitempty"`
}

// Validate checks the fields the server requires.
func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrTitleRequired
	}
	if !n.Priority.IsValid() {
		return fmt.Errorf("invalid priority %d", n.Priority)
	}
	if n.Deadline != "" {
		if _, ok := ParseTimestamp(n.Deadline); !ok {
			return fmt.Errorf("invalid deadline %q: use YYYY-MM-DD HH:MM", n.Deadline)
		}
	}
	return nil
}

// NormalizeDeadline converts any accepted deadline spelling into the wire
// layout. Empty input stays empty.
func NormalizeDeadline(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	ts, ok := ParseTimestamp(s)
	if !ok {
		return "", fmt.Errorf("invalid deadline %q: use YYYY-MM-DD HH:MM", s)
	}
	return ts.Time.Format(DeadlineLayout), nil
}
