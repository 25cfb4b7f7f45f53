package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizePage produces the search-friendly form of extracted page
// text: NFC composition, lowercased, whitespace runs collapsed to a
// single space.
func NormalizePage(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
