package textutil

import (
	"strings"
	"unicode"
)

// SafeFileName makes name usable as a file name and an object key. Whitespace
// and path separators collapse to single dashes, while quoting and glob
// characters are dropped.
func SafeFileName(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r) || strings.ContainsRune(`/\:*`, r):
			pendingDash = true
		case unicode.IsControl(r) || strings.ContainsRune(`?"<>|`, r):
		default:
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Token lowercases value into an ASCII [a-z0-9_-] token suitable for lock and
// scratch file names. Runs of other characters become one underscore; empty
// results become "unknown".
func Token(value string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	if out := strings.Trim(b.String(), "_-"); out != "" {
		return out
	}
	return "unknown"
}
