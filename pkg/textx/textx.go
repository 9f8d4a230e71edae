// Package textx holds small text helpers shared by the HTTP handlers.
package textx

import "strings"

// SanitizeText drops control characters from user-supplied text and trims
// surrounding whitespace. Tab, newline and carriage return survive; resume
// text and interview answers legitimately contain them.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case r >= 32 && r != 127:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
