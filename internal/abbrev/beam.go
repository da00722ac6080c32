package abbrev

import (
	"context"
	"sync"

	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/ranker"
	"github.com/aipinyin/engine/internal/syllable"
	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/vocab"
)

const defaultBeamWidth = 5

// initialMaskByVocab caches the initial->candidate-ids index per *vocab.Vocab
// since it is rebuilt from the whole syllable table, not specific to a call.
var initialMaskByVocab sync.Map

// Beam runs beam search over initialTokens, masking each step to the
// union of candidate character ids whose canonical pinyin starts with
// that initial. It returns decoded phrase candidates ordered by
// cumulative score descending. Returns nil if the scorer is unavailable.
func Beam(ctx context.Context, scorer ranker.Scorer, v *vocab.Vocab, initialTokens []string, width int) []types.Candidate {
	if scorer == nil || v == nil || len(initialTokens) == 0 {
		return nil
	}
	if width <= 0 {
		width = defaultBeamWidth
	}

	masks := initialMasks(v)
	steps := make([][]int32, len(initialTokens))
	for i, tok := range initialTokens {
		steps[i] = masks[tok]
		if len(steps[i]) == 0 {
			return nil
		}
	}

	prefix := v.EncodeContext("")
	beams := ranker.BeamSearch(ctx, scorer, prefix, steps, width)
	if len(beams) == 0 {
		return nil
	}

	pinyin := joinInitials(initialTokens)
	seen := make(map[string]bool, len(beams))
	out := make([]types.Candidate, 0, len(beams))
	for rank, b := range beams {
		text := b.Text(v)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, types.Candidate{
			Word:   text,
			Weight: uint32(100 - rank*100/(len(beams)+1)),
			Pinyin: pinyin,
		})
	}
	return out
}

// initialMasks builds (and caches per-vocab) a map from initial token to
// the union of candidate character ids of every syllable whose initial
// equals that token.
func initialMasks(v *vocab.Vocab) map[string][]int32 {
	if cached, ok := initialMaskByVocab.Load(v); ok {
		return cached.(map[string][]int32)
	}

	out := make(map[string][]int32)
	for _, syl := range syllable.All() {
		initial := dict.Initial(syl)
		ids := v.IDsFor(syl)
		if len(ids) == 0 {
			continue
		}
		out[initial] = append(out[initial], ids...)
	}
	initialMaskByVocab.Store(v, out)
	return out
}
