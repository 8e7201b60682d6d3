package logger

import (
	"fmt"
	"strings"
)

// SanitizeForLog escapes control characters so engine output and request
// values cannot inject fake log entries or terminal escape sequences.
// Trailing line breaks are dropped first since the engine emits text one line
// at a time. Unicode is preserved.
func SanitizeForLog(s string) string {
	s = strings.TrimRight(s, "\r\n")

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		default:
			if r < 32 || r == 127 {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}
