// Package notify defines the status notifications shown as toasts.
package notify

import "time"

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// New builds a notification stamped with the current time.
func New(level Level, message string) Notification {
	return Notification{Level: level, Message: message, CreatedAt: time.Now()}
}
