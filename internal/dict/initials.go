package dict

import (
	"strings"

	"github.com/aipinyin/engine/internal/syllable"
)

// digraphInitials are the two-letter Pinyin initials; every other initial
// is a single consonant (or the syllable itself, for a zero-initial final).
var digraphInitials = map[string]bool{"zh": true, "ch": true, "sh": true}

// Initial returns the initial of a single syllable: "zh"/"ch"/"sh" when the
// syllable starts with that digraph, else its first letter, else (for a
// vowel-initial syllable like "an") the syllable's first letter too.
func Initial(syl string) string {
	if len(syl) >= 2 {
		if prefix := syl[:2]; digraphInitials[prefix] {
			return prefix
		}
	}
	if syl == "" {
		return ""
	}
	return syl[:1]
}

// Initials segments a (possibly multi-syllable) pinyin key and concatenates
// each syllable's initial, e.g. "nihao" -> "nh", "women" -> "wm".
func Initials(pinyin string) string {
	syllables := syllable.Segment(pinyin)
	var b strings.Builder
	for _, s := range syllables {
		b.WriteString(Initial(s))
	}
	return b.String()
}
