package sepa

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// German transliteration rules take precedence over the generic
// diacritic folding: the generic pass would turn ä into a, but German
// names want ae.
var germanReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
)

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize folds a display name down to the ASCII repertoire allowed in
// SEPA character fields. German umlauts and ß are transliterated first,
// remaining diacritics are stripped, and whatever still is not ASCII is
// dropped.
func Sanitize(s string) string {
	s = germanReplacer.Replace(s)

	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
