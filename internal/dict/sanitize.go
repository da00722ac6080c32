package dict

import "strings"

// SanitizePinyin reduces a corpus pinyin field to canonical lowercase
// [a-z]: tone-marked vowels and "ü" collapse to their toneless ASCII base
// with "ü" specifically mapping to "v", and any remaining
// non-ASCII code point is dropped.
func SanitizePinyin(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if repl, ok := toneStrip[r]; ok {
			r = repl
		}
		switch {
		case r == 'ü' || r == 'Ü' || r == 'v' || r == 'V':
			b.WriteByte('v')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		default:
			// non-ASCII (or any other symbol): drop silently
		}
	}
	return b.String()
}

// toneStrip maps every toned Pinyin vowel to its toneless ASCII base.
var toneStrip = map[rune]rune{
	'ā': 'a', 'á': 'a', 'ǎ': 'a', 'à': 'a',
	'ē': 'e', 'é': 'e', 'ě': 'e', 'è': 'e',
	'ī': 'i', 'í': 'i', 'ǐ': 'i', 'ì': 'i',
	'ō': 'o', 'ó': 'o', 'ǒ': 'o', 'ò': 'o',
	'ū': 'u', 'ú': 'u', 'ǔ': 'u', 'ù': 'u',
	'ǖ': 'ü', 'ǘ': 'ü', 'ǚ': 'ü', 'ǜ': 'ü',
	'Ā': 'a', 'Á': 'a', 'Ǎ': 'a', 'À': 'a',
	'Ē': 'e', 'É': 'e', 'Ě': 'e', 'È': 'e',
	'Ī': 'i', 'Í': 'i', 'Ǐ': 'i', 'Ì': 'i',
	'Ō': 'o', 'Ó': 'o', 'Ǒ': 'o', 'Ò': 'o',
	'Ū': 'u', 'Ú': 'u', 'Ǔ': 'u', 'Ù': 'u',
}
