// Package normalize canonicalizes player and item names extracted from log lines.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// glyphs maps stylized look-alike letters to plain Latin letters. Most are
// small capitals, which have no compatibility decomposition.
var glyphs = map[rune]rune{
	'ᴀ': 'a', 'ʙ': 'b', 'ᴄ': 'c', 'ᴅ': 'd', 'ᴇ': 'e', 'ꜰ': 'f', 'ɢ': 'g',
	'ʜ': 'h', 'ɪ': 'i', 'ᴊ': 'j', 'ᴋ': 'k', 'ʟ': 'l', 'ᴍ': 'm', 'ɴ': 'n',
	'ᴏ': 'o', 'ᴘ': 'p', 'ꞯ': 'q', 'ʀ': 'r', 'ꜱ': 's', 'ᴛ': 't', 'ᴜ': 'u',
	'ᴠ': 'v', 'ᴡ': 'w', 'ʏ': 'y', 'ᴢ': 'z',
	'ł': 'l', 'Ł': 'l', 'ᴌ': 'l',
}

// Text returns the canonical form of raw: stylized glyphs and diacritics
// folded to ASCII letters, lowercased, trimmed, and with internal whitespace
// collapsed to single spaces.
func Text(raw string) string {
	mapped := strings.Map(func(r rune) rune {
		if plain, ok := glyphs[r]; ok {
			return plain
		}
		return r
	}, raw)

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, mapped)
	if err != nil {
		folded = mapped
	}
	folded = cases.Fold().String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Equal reports whether a and b normalize to the same key.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}
