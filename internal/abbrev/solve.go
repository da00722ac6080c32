package abbrev

import (
	"context"

	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/ranker"
	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/vocab"
)

// Solve fuses the two abbreviation strategies for raw (an initials-only
// buffer) with the plain dictionary abbreviation index, in the order
// word-graph, then beam search, then dictionary hits, deduplicated by
// word string. scorer/v may be nil, in which case the beam-search
// contribution is simply absent.
func Solve(ctx context.Context, d *dict.Dictionary, scorer ranker.Scorer, v *vocab.Vocab, raw string, topK int) []types.Candidate {
	tokens := ParseInitials(raw)
	if len(tokens) < 2 {
		return nil
	}

	seen := make(map[string]bool)
	var out []types.Candidate
	appendNew := func(cands []types.Candidate, src types.Source) {
		for _, c := range cands {
			if seen[c.Word] {
				continue
			}
			seen[c.Word] = true
			c.Source = src
			out = append(out, c)
		}
	}

	for _, s := range WordGraph(d, tokens, topK) {
		appendNew([]types.Candidate{{Word: s.Text, Weight: uint32(clampScore(s.Score)), Pinyin: joinInitials(tokens)}}, types.SourceAbbrevGraph)
	}
	if scorer != nil && v != nil {
		appendNew(Beam(ctx, scorer, v, tokens, defaultBeamWidth), types.SourceAbbrevBeam)
	}
	appendNew(d.LookupAbbreviation(joinInitials(tokens)), types.SourceDict)

	return out
}

func clampScore(score int64) int64 {
	if score < 0 {
		return 0
	}
	if score > int64(^uint32(0)) {
		return int64(^uint32(0))
	}
	return score
}
