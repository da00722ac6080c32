// Package wordgraph runs the backward dynamic-programming search that
// turns a syllable sequence into whole-word sentence candidates, favoring
// coverings built from longer dictionary words over equivalent-weight
// single-character coverings.
package wordgraph

import (
	"sort"
	"strings"

	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/types"
)

// maxWindow bounds how many syllables a single dictionary-word window may
// span, matching the dictionary's own prefix depth.
const maxWindow = 6

// topPerLength is how many dictionary entries are kept per window length
// at each starting position, before DP combination.
const topPerLength = 3

// multiSyllableBonusPerSyllable is added per syllable to any window of
// length > 1, so multi-word coverings dominate per-character coverings of
// comparable total dictionary weight.
const multiSyllableBonusPerSyllable = 1000

// Sentence is one candidate whole-word covering of the input syllables.
type Sentence struct {
	Text  string
	Score int64
}

type path struct {
	text  string
	score int64
}

// Segment enumerates dictionary-word coverings of syllables and returns
// up to topK sentences, ordered by score descending, deduplicated by
// concatenated text (keeping the highest-scoring path to each text).
func Segment(d *dict.Dictionary, syllables []string, topK int) []Sentence {
	return SegmentKeyed(syllables, topK, func(key string) []types.Candidate {
		return d.Lookup(key)
	})
}

// SegmentKeyed is the shared DP core: it is identical whether the window
// key is a pinyin concatenation (dictionary words, see Segment) or an
// initials concatenation (abbreviation word-graph); only how a window is
// looked up differs, so that is the one parameter callers supply.
func SegmentKeyed(tokens []string, topK int, lookup func(key string) []types.Candidate) []Sentence {
	n := len(tokens)
	if n == 0 {
		return nil
	}

	// best[i] holds the top candidate paths from position i to the end.
	best := make([][]path, n+1)
	best[n] = []path{{text: "", score: 0}}

	for i := n - 1; i >= 0; i-- {
		maxL := maxWindow
		if remaining := n - i; remaining < maxL {
			maxL = remaining
		}

		var options []path
		for l := 1; l <= maxL; l++ {
			key := strings.Join(tokens[i:i+l], "")
			cands := lookup(key)
			if len(cands) == 0 {
				continue
			}
			if len(cands) > topPerLength {
				cands = cands[:topPerLength]
			}
			for _, c := range cands {
				wordScore := int64(c.Weight)
				if l > 1 {
					wordScore += int64(l) * multiSyllableBonusPerSyllable
				}
				for _, tail := range best[i+l] {
					options = append(options, path{
						text:  c.Word + tail.text,
						score: wordScore + tail.score,
					})
				}
			}
		}
		best[i] = dedupeTopN(options, topPerLength)
	}

	final := dedupeTopN(best[0], topK)
	out := make([]Sentence, len(final))
	for i, p := range final {
		out[i] = Sentence{Text: p.text, Score: p.score}
	}
	return out
}

// dedupeTopN deduplicates paths by text (keeping the highest score for
// each), sorts by score descending, and truncates to n.
func dedupeTopN(paths []path, n int) []path {
	if len(paths) == 0 {
		return nil
	}
	best := make(map[string]int64, len(paths))
	for _, p := range paths {
		if cur, ok := best[p.text]; !ok || p.score > cur {
			best[p.text] = p.score
		}
	}
	out := make([]path, 0, len(best))
	for text, score := range best {
		out = append(out, path{text: text, score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
