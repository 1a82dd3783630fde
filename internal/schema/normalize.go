package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes runes and drops the combining marks, so
// "Descripción" becomes "Descripcion".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader is the deterministic fallback used when a raw header has
// no mapping: lowercase, diacritics stripped, runs of non-alphanumerics
// collapsed into a single underscore, leading/trailing underscores trimmed.
// Two distinct headers can collapse to the same name; that risk is accepted
// in exchange for never dropping an unanticipated column.
func NormalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// HeadersEqual compares two header names case-insensitively after trimming,
// the shared normalize-then-compare rule for all header resolution.
func HeadersEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
