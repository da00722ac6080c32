package abbrev

import (
	"strings"

	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/wordgraph"
)

// WordGraph runs the word-graph DP keyed by initials instead of pinyin:
// for each starting position it looks up dictionary entries whose
// initials-string equals the window. When no abbreviation hit covers a
// position at all, it falls back to the single highest-weight
// single-character entry whose pinyin starts with that one initial, so
// the DP never dead-ends on an uncovered position.
func WordGraph(d *dict.Dictionary, initialTokens []string, topK int) []wordgraph.Sentence {
	if len(initialTokens) == 0 {
		return nil
	}

	fallback := make(map[string]types.Candidate, len(initialTokens))
	for _, tok := range initialTokens {
		if _, ok := fallback[tok]; ok {
			continue
		}
		if c, ok := bestSingleCharByInitial(d, tok); ok {
			fallback[tok] = c
		}
	}

	return wordgraph.SegmentKeyed(initialTokens, topK, func(key string) []types.Candidate {
		if hits := d.LookupAbbreviation(key); len(hits) > 0 {
			return hits
		}
		if c, ok := fallback[key]; ok {
			return []types.Candidate{c}
		}
		return nil
	})
}

// bestSingleCharByInitial returns the highest-weight single-character
// dictionary entry whose pinyin's initial equals tok.
func bestSingleCharByInitial(d *dict.Dictionary, tok string) (types.Candidate, bool) {
	var best types.Candidate
	found := false
	for _, c := range d.All() {
		if len([]rune(c.Word)) != 1 {
			continue
		}
		if !strings.HasPrefix(c.Pinyin, tok) {
			continue
		}
		if dict.Initial(c.Pinyin) != tok {
			continue
		}
		if !found || c.Weight > best.Weight {
			best = c
			found = true
		}
	}
	return best, found
}
