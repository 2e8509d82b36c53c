package oracle

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticFold strips combining marks after NFD decomposition, so "śląskie"
// and "slaskie" compare equal.
var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// letterFold maps letters that do not decompose into base + combining mark.
var letterFold = strings.NewReplacer(
	"ł", "l",
	"ø", "o",
	"đ", "d",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
)

// Normalize lowercases, folds diacritics, and collapses whitespace so guess
// comparison is case-, diacritic-, and spacing-insensitive.
func Normalize(s string) string {
	folded, _, err := transform.String(diacriticFold, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = letterFold.Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// matchesAny reports whether the normalized guess equals any of the
// normalized candidate names.
func matchesAny(guess string, names []string) bool {
	g := Normalize(guess)
	if g == "" {
		return false
	}
	for _, name := range names {
		if Normalize(name) == g {
			return true
		}
	}
	return false
}
