package render

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSlug is the anchor used when heading text has no letters or digits.
const DefaultSlug = "heading"

var lower = cases.Lower(language.Und)

// Slug turns heading text into an anchor id. Letters and digits of any
// script are kept and lowercased, every other run of characters becomes a
// single "-", and separators at either end are trimmed. Combining marks are
// dropped.
func Slug(text string) string {
	var b strings.Builder
	pending := false
	for _, r := range lower.String(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		case unicode.Is(unicode.Mn, r):
		default:
			pending = true
		}
	}
	if b.Len() == 0 {
		return DefaultSlug
	}
	return b.String()
}

// slugSet hands out unique anchors within one document.
type slugSet map[string]int

func (s slugSet) next(text string) string {
	base := Slug(text)
	n := s[base]
	s[base] = n + 1
	if n == 0 {
		return base
	}
	candidate := base + "-" + strconv.Itoa(n+1)
	for s[candidate] > 0 {
		n++
		candidate = base + "-" + strconv.Itoa(n+1)
	}
	s[candidate] = 1
	return candidate
}
