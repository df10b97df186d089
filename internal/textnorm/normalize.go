// Package textnorm canonicalizes OCR text so that two detections of the same
// printed fragment compare equal regardless of case, spacing or punctuation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize keeps only CJK ideographs and word characters ([A-Za-z0-9_]) of
// text and lowercases the result. Full-width letters and digits are folded to
// their ASCII forms first, so they survive as word characters. No other
// compatibility mapping is applied: "½", "²" and "①" are not digits and are
// dropped.
//
// Normalize is total and idempotent. An empty string normalizes to itself.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	folded := width.Fold.String(text)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case unicode.Is(unicode.Han, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether a and b are the same fragment once normalized.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
