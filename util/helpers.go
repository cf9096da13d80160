//revive:disable-next-line:var-naming
package util

import (
	"strings"
	"unicode/utf16"
)

// SanitizeFilename replaces every character outside [A-Za-z0-9] with an
// underscore so the result is safe inside a Content-Disposition header.
// Characters outside the BMP count as two UTF-16 units and become "__", the
// same names browser clients derive from the dashboard title.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			n := utf16.RuneLen(r)
			if n < 1 {
				n = 1
			}
			b.WriteString(strings.Repeat("_", n))
		}
	}
	return b.String()
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
