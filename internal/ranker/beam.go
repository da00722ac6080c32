package ranker

import (
	"context"
	"sort"

	"github.com/aipinyin/engine/internal/vocab"
)

// Beam is one live hypothesis during beam search: the ids chosen so far,
// plus the running context (prefix + chosen ids) and cumulative
// log-score.
type Beam struct {
	Ids     []int32
	Context []int32
	Score   float64
}

// Text decodes Ids back into characters via v, concatenated.
func (b Beam) Text(v *vocab.Vocab) string {
	var out string
	for _, id := range b.Ids {
		if ch, ok := v.IDToChar[id]; ok {
			out += ch
		}
	}
	return out
}

// beamSearch runs width-constrained beam search over steps, where steps[i]
// is the set of allowed token ids at position i (e.g. candidate ids for a
// syllable, or for an abbreviation's initial). It starts from one beam
// seeded with contextPrefix and an empty Ids/Score, and returns up to
// BeamWidth final beams ordered by cumulative score descending.
func (r *Ranker) beamSearch(ctx context.Context, contextPrefix []int32, steps [][]int32) []Beam {
	return BeamSearch(ctx, r.scorer, contextPrefix, steps, r.BeamWidth)
}

// BeamSearch is the generic beam-search primitive shared by phrase
// prediction (syllable-constrained) and abbreviation solving
// (initial-constrained): at each step every live beam is expanded by up
// to width continuations chosen by a masked top-k over score_next, and
// the globally top-width beams survive to the next step.
func BeamSearch(ctx context.Context, scorer Scorer, contextPrefix []int32, steps [][]int32, width int) []Beam {
	if scorer == nil || len(steps) == 0 {
		return nil
	}
	if width <= 0 {
		width = defaultBeamWidth
	}

	beams := []Beam{{Context: append([]int32(nil), contextPrefix...)}}

	for _, mask := range steps {
		if len(mask) == 0 {
			return nil
		}
		var next []Beam
		for _, b := range beams {
			logits, err := scorer.ScoreNext(ctx, b.Context)
			if err != nil {
				continue
			}
			for _, sc := range topKMasked(logits, mask, width) {
				next = append(next, Beam{
					Ids:     append(append([]int32(nil), b.Ids...), sc.id),
					Context: append(append([]int32(nil), b.Context...), sc.id),
					Score:   b.Score + float64(sc.logit),
				})
			}
		}
		if len(next) == 0 {
			return nil
		}
		sort.SliceStable(next, func(i, j int) bool { return next[i].Score > next[j].Score })
		if len(next) > width {
			next = next[:width]
		}
		beams = next
	}

	sort.SliceStable(beams, func(i, j int) bool { return beams[i].Score > beams[j].Score })
	return beams
}
