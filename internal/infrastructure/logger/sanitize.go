package logger

import (
	"fmt"
	"strings"
)

// SanitizeForLog escapes control characters before a string reaches the
// log. Folder names and media filenames come straight from the
// filesystem and from API clients, so embedded newlines could forge log
// entries and ANSI sequences could restyle a terminal. Everything above
// the control range is kept as-is; camera filenames in any script log
// fine.
func SanitizeForLog(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 32 || r == 127:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
