package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldValidation holds runtime validation rules for a form field.
type FieldValidation struct {
	Required        bool
	RequiredMessage string // shown instead of "required" when set
	MaxLength       int
	Pattern         *regexp.Regexp
	PatternMessage  string
	Check           func(string) error // extra check, run on non-empty values
}

// ValidateText checks a text value against the validation rules and returns
// the message to show, or "" when the value is acceptable.
func (v FieldValidation) ValidateText(value string) string {
	trimmed := strings.TrimSpace(value)
	if v.Required && trimmed == "" {
		if v.RequiredMessage != "" {
			return v.RequiredMessage
		}
		return "required"
	}
	if trimmed == "" {
		return ""
	}
	if v.MaxLength > 0 && utf8.RuneCountInString(value) > v.MaxLength {
		return fmt.Sprintf("maximum %d characters", v.MaxLength)
	}
	if v.Pattern != nil && !v.Pattern.MatchString(trimmed) {
		if v.PatternMessage != "" {
			return v.PatternMessage
		}
		return fmt.Sprintf("must match pattern: %s", v.Pattern.String())
	}
	if v.Check != nil {
		if err := v.Check(trimmed); err != nil {
			return err.Error()
		}
	}
	return ""
}
