package components

import "strings"

// blanks covers the widest header and dialog rows without allocating.
var blanks = strings.Repeat(" ", 256)

// Pad returns n spaces. Negative widths yield "".
func Pad(n int) string {
	switch {
	case n <= 0:
		return ""
	case n <= len(blanks):
		return blanks[:n]
	default:
		return strings.Repeat(" ", n)
	}
}
