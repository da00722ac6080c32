// Package ranker wraps a character-level autoregressive scorer with the
// Pinyin-constrained query shapes the rest of the engine needs: predict
// (generate phrases for a buffer) and rerank (reorder existing
// candidates against model confidence). The scorer itself is an external
// collaborator — an ONNX session, or an HTTP-backed model — so this
// package depends only on the score_next primitive through the Scorer
// interface.
package ranker

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/aipinyin/engine/internal/syllable"
	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/vocab"
)

// Scorer is the single primitive the ranker depends on: given a token-id
// context, return logits over the full vocabulary at the final position.
// A nil Scorer (or one that always errors) represents the
// Ready(session)/Unavailable(reason) state split from the design notes:
// the ranker degrades to its failure policy rather than panicking.
type Scorer interface {
	ScoreNext(ctx context.Context, ids []int32) ([]float32, error)
}

const defaultBeamWidth = 5
const defaultTopK = 9

// Ranker holds the (possibly absent) scorer and the vocab tables needed
// to mask and decode its output.
type Ranker struct {
	scorer    Scorer
	vocab     *vocab.Vocab
	BeamWidth int
}

// New builds a Ranker. scorer may be nil, meaning "model unavailable";
// every query then follows the documented failure policy instead of
// erroring.
func New(scorer Scorer, v *vocab.Vocab) *Ranker {
	return &Ranker{scorer: scorer, vocab: v, BeamWidth: defaultBeamWidth}
}

// Available reports whether a usable scorer is present.
func (r *Ranker) Available() bool {
	return r != nil && r.scorer != nil && r.vocab != nil
}

// Predict generates candidate phrases for pinyin given context (recent
// committed text) and up to topK results. Initials-only buffers are not
// handed to the abbreviation solver here (abbrev.Solve is called by the
// engine instead); their one-letter fallback tokens have no candidate
// ids, so Predict returns empty for them. If the model is unavailable, or any call to it fails,
// Predict returns an empty slice rather than an error — predicting is a
// best-effort enrichment, never a hard dependency of the candidate list.
func (r *Ranker) Predict(ctx context.Context, pinyin string, context_ string, topK int) []types.Candidate {
	if !r.Available() {
		return nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	syllables := syllable.Segment(pinyin)
	if len(syllables) == 0 {
		return nil
	}

	prefix := r.vocab.EncodeContext(lastNRunes(context_, r.vocab.MaxContextChars))

	if len(syllables) == 1 {
		return r.predictSingleSyllable(ctx, syllables[0], prefix, topK)
	}
	return r.predictMultiSyllable(ctx, syllables, prefix, topK)
}

func (r *Ranker) predictSingleSyllable(ctx context.Context, syl string, prefix []int32, topK int) []types.Candidate {
	mask := r.vocab.IDsFor(syl)
	if len(mask) == 0 {
		return nil
	}
	logits, err := r.scorer.ScoreNext(ctx, prefix)
	if err != nil {
		return nil
	}
	scored := topKMasked(logits, mask, topK)
	out := make([]types.Candidate, 0, len(scored))
	for rank, s := range scored {
		ch, ok := r.vocab.IDToChar[s.id]
		if !ok {
			continue
		}
		out = append(out, types.Candidate{Word: ch, Weight: weightFromRank(rank, topK), Pinyin: syl})
	}
	return out
}

func (r *Ranker) predictMultiSyllable(ctx context.Context, syllables []string, prefix []int32, topK int) []types.Candidate {
	steps := make([][]int32, len(syllables))
	for i, syl := range syllables {
		steps[i] = r.vocab.IDsFor(syl)
	}
	beams := r.beamSearch(ctx, prefix, steps)
	if len(beams) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(beams))
	pinyin := strings.Join(syllables, "")
	out := make([]types.Candidate, 0, len(beams))
	for _, b := range beams {
		text := b.Text(r.vocab)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, types.Candidate{Word: text, Weight: weightFromScore(b.Score), Pinyin: pinyin})
		if len(out) >= topK {
			break
		}
	}
	return out
}

// Rerank blends every candidate's first-character model score with its
// existing (dictionary) rank, per a context-length-adaptive weight table.
// If the model is unavailable or the scoring call fails, candidates are
// returned unmodified.
func (r *Ranker) Rerank(ctx context.Context, pinyin string, candidates []types.Candidate, context_ string) []types.Candidate {
	if !r.Available() || len(candidates) == 0 {
		return candidates
	}

	syllables := syllable.Segment(pinyin)

	prefix := r.vocab.EncodeContext(lastNRunes(context_, r.vocab.MaxContextChars))
	logits, err := r.scorer.ScoreNext(ctx, prefix)
	if err != nil {
		return candidates
	}

	aiWeight, dictWeight := rerankWeights(len([]rune(context_)))

	n := len(candidates)
	aiScores := make([]float64, n)
	for i, c := range candidates {
		firstChar := firstRune(c.Word)
		if id, ok := r.vocab.CharToID[firstChar]; ok && int(id) < len(logits) {
			aiScores[i] = float64(logits[id])
		} else {
			aiScores[i] = math.Inf(-1)
		}
	}
	aiNorm := minMaxNormalize(aiScores)

	type scored struct {
		cand  types.Candidate
		score float64
	}
	out := make([]scored, n)
	for i, c := range candidates {
		dictNorm := 100.0 - float64(i)*100.0/float64(n)
		lengthBonus := lengthBonusFor(c.Word, len(syllables))
		total := dictNorm*dictWeight + aiNorm[i]*aiWeight + lengthBonus
		out[i] = scored{cand: c, score: total}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })

	result := make([]types.Candidate, n)
	for i, s := range out {
		result[i] = s.cand
	}
	return result
}

// rerankWeights implements the context-length-adaptive AI/dict blend
// table: 0 chars -> 50/50, 1-2 -> 60/40, 3-4 -> 70/30, >=5 -> 80/20.
func rerankWeights(contextLen int) (ai, dict float64) {
	switch {
	case contextLen == 0:
		return 0.50, 0.50
	case contextLen <= 2:
		return 0.60, 0.40
	case contextLen <= 4:
		return 0.70, 0.30
	default:
		return 0.80, 0.20
	}
}

func lengthBonusFor(word string, syllableCount int) float64 {
	n := len([]rune(word))
	switch {
	case n == syllableCount && n >= 2:
		return 20
	case n == syllableCount:
		return 5
	default:
		return 0
	}
}

func minMaxNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if math.IsInf(s, -1) {
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	spread := max - min
	for i, s := range scores {
		if math.IsInf(s, -1) || spread == 0 {
			out[i] = 0.1
			continue
		}
		v := (s - min) / spread * 100
		if v < 0.1 {
			v = 0.1
		}
		out[i] = v
	}
	return out
}

type scoredID struct {
	id    int32
	logit float32
}

func topKMasked(logits []float32, mask []int32, k int) []scoredID {
	candidates := make([]scoredID, 0, len(mask))
	for _, id := range mask {
		if int(id) < 0 || int(id) >= len(logits) {
			continue
		}
		candidates = append(candidates, scoredID{id: id, logit: logits[id]})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].logit > candidates[j].logit })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func weightFromRank(rank, total int) uint32 {
	if total <= 0 {
		total = 1
	}
	return uint32(100 - rank*100/(total+1))
}

func weightFromScore(score float64) uint32 {
	v := int(score*10) + 100
	if v < 1 {
		v = 1
	}
	return uint32(v)
}

func lastNRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
