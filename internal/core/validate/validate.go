// Package validate provides shared validation functions for user input.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/tasq/internal/core/task"
)

// TaskTitle validates a task title is non-empty after trimming whitespace.
func TaskTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("please enter a task title")
	}
	return nil
}

// Deadline validates an optional deadline in any accepted spelling.
func Deadline(s string) error {
	_, err := task.NormalizeDeadline(s)
	return err
}
