package common

import "strings"

// Slugify derives a URL-safe identifier from an operator name: lowercase,
// ASCII letters and digits only, every other run of characters collapsed to
// a single hyphen, leading and trailing hyphens trimmed. Accented characters
// are dropped, not transliterated ("Águila 7 S.L." -> "guila-7-s-l").
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
